package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DeclaresChatTables(t *testing.T) {
	schema := Schema()

	for _, table := range []string{"users", "servers", "listings", "messages"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, schema, "idx_messages_room_id ON messages (room_id, id)")
	assert.NotContains(t, strings.ToUpper(schema), "DROP ")
}
