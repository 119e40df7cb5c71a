package metadata

// Config holds configuration for metadata synchronization.
type Config struct {
	// DescriptorFile is the YAML file declaring processors, mappings, rules and filters.
	DescriptorFile string `mapstructure:"descriptor_file" default:"descriptors.yaml"`
	// CacheTTLSeconds is how long processor reads are memoized. Zero disables the cache.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`
	// AbortOnError stops processing an event at the first failing mapping.
	AbortOnError bool `mapstructure:"abort_on_error" default:"false"`
	// AsyncWorkers is the number of goroutines processing asynchronous mappings.
	AsyncWorkers int `mapstructure:"async_workers" default:"2"`
	// AsyncQueueSize is the capacity of the asynchronous job queue.
	AsyncQueueSize int `mapstructure:"async_queue_size" default:"64"`
}
