package event

import (
	"github.com/gatekit/gatekit/service/messaging/fs"
	"github.com/gatekit/gatekit/service/messaging/memory"
)

// Option customises the event service.
type Option func(s *Service)

// WithNewFsQueueConfig sets the filesystem queue configuration factory.
func WithNewFsQueueConfig(newConfig func(name string) fs.QueueConfig) Option {
	return func(s *Service) {
		s.fsNewQueueConfig = newConfig
	}
}

// WithNewMemoryQueueConfig sets the memory queue configuration factory.
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newConfig
	}
}
