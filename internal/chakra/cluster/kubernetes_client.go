package cluster

import (
	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/romilbhardwaj/chakra/internal/chakra/configuration"
)

type KubernetesClientProvider interface {
	Client() kubernetes.Interface
}

type ConfigKubernetesClientProvider struct {
	restConfig *rest.Config
	client     kubernetes.Interface
}

func NewKubernetesClientProvider(kubernetesConfig *configuration.KubernetesConfiguration) (*ConfigKubernetesClientProvider, error) {
	config, err := loadConfig(kubernetesConfig.KubeConfigPath)
	if err != nil {
		return nil, err
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, err
	}

	return &ConfigKubernetesClientProvider{restConfig: config, client: client}, nil
}

func (c *ConfigKubernetesClientProvider) Client() kubernetes.Interface {
	return c.client
}

func loadConfig(kubeConfigPath string) (*rest.Config, error) {
	if kubeConfigPath != "" {
		log.Infof("Using kubeconfig at %s", kubeConfigPath)
		return clientcmd.BuildConfigFromFlags("", kubeConfigPath)
	}

	config, err := rest.InClusterConfig()
	if err == rest.ErrNotInCluster {
		log.Info("Running with default client configuration")
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		overrides := &clientcmd.ConfigOverrides{}
		return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	}
	log.Info("Running with in cluster client configuration")
	return config, err
}
