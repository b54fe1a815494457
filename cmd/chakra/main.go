package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/romilbhardwaj/chakra/internal/chakra"
	"github.com/romilbhardwaj/chakra/internal/chakra/configuration"
	"github.com/romilbhardwaj/chakra/internal/common"
	"github.com/romilbhardwaj/chakra/internal/common/app"
)

const CustomConfigLocation string = "config"

func init() {
	pflag.StringSlice(
		CustomConfigLocation,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)",
	)
	pflag.Parse()
}

func main() {
	common.ConfigureLogging()
	common.BindCommandlineArguments()

	var config configuration.SchedulerConfiguration
	userSpecifiedConfigs := viper.GetStringSlice(CustomConfigLocation)
	common.LoadConfig(&config, "./config/chakra", userSpecifiedConfigs)

	ctx := app.CreateContextWithShutdown()

	shutdownMetricServer := common.ServeMetrics(config.Application.MetricsPort)
	defer shutdownMetricServer()

	shutdown, wg, err := chakra.StartUp(ctx, config)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %s", err)
	}
	go func() {
		<-ctx.Done()
		shutdown()
	}()
	wg.Wait()
}
