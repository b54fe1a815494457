package metrics

const ChakraMetricsPrefix = "chakra_scheduler_"
