package lifecycle_test

import (
	"testing"

	"github.com/aurora-skin/skinsafety/internal/iodb"
	"github.com/aurora-skin/skinsafety/internal/ioschema"
	"github.com/aurora-skin/skinsafety/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
)

// TestSchemaManagerContract ensures that the ioschema manager
// satisfies the lifecycle.SchemaManager interface.
func TestSchemaManagerContract(t *testing.T) {
	var mgr lifecycle.SchemaManager = ioschema.NewManager(iodb.NewPgxOperator())
	assert.NotNil(t, mgr)
}
