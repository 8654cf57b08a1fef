package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brandforge/creative-console/internal/model"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "brand.b-1.msg.user", MessageSubject("b-1", model.RoleUser))
	assert.Equal(t, "brand.b-1.msg.assistant", MessageSubject("b-1", model.RoleAssistant))
	assert.Equal(t, "brand.b-1.event.asset_attached", EventSubject("b-1", model.EventTypeAssetAttached))
	assert.Equal(t, "brand.b-1.>", BrandFilter("b-1"))
}
