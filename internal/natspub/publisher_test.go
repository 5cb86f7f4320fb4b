package natspub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPublisherValidation(t *testing.T) {
	_, err := NewPublisher("", "vncserve.events")
	assert.Error(t, err)

	_, err = NewPublisher("nats://localhost:4222", "")
	assert.Error(t, err)
}
