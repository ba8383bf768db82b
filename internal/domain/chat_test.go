package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeMessages(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	t.Run("drops exact duplicates", func(t *testing.T) {
		server := []ChatMessage{{Role: ChatRoleUser, Content: "hi", Timestamp: t1}}
		local := []ChatMessage{
			{Role: ChatRoleUser, Content: "hi", Timestamp: t1},
			{Role: ChatRoleUser, Content: "bye", Timestamp: t2},
		}

		merged := MergeMessages(server, local)

		assert.Len(t, merged, 2)
		assert.Equal(t, "hi", merged[0].Content)
		assert.Equal(t, "bye", merged[1].Content)
	})

	t.Run("same content different timestamp is kept", func(t *testing.T) {
		server := []ChatMessage{{Content: "hi", Timestamp: t1}}
		local := []ChatMessage{{Content: "hi", Timestamp: t2}}

		assert.Len(t, MergeMessages(server, local), 2)
	})

	t.Run("timestamps compare by instant", func(t *testing.T) {
		server := []ChatMessage{{Content: "hi", Timestamp: t1}}
		local := []ChatMessage{{Content: "hi", Timestamp: t1.In(time.FixedZone("X", 3600))}}

		assert.Len(t, MergeMessages(server, local), 1)
	})

	t.Run("does not mutate server slice", func(t *testing.T) {
		server := make([]ChatMessage, 1, 4)
		server[0] = ChatMessage{Content: "a", Timestamp: t1}
		_ = MergeMessages(server, []ChatMessage{{Content: "b", Timestamp: t2}})

		assert.Len(t, server, 1)
	})
}
