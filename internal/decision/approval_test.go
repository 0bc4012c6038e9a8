package decision

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseControl(t *testing.T) {
	id := uuid.NewString()

	c, err := parseControl(approveID(id, "42"))
	require.NoError(t, err)
	assert.Equal(t, controlApprove, c.kind)
	assert.Equal(t, id, c.incidentID)
	assert.Equal(t, "42", c.userID)

	c, err = parseControl(dismissID(id))
	require.NoError(t, err)
	assert.Equal(t, controlDismiss, c.kind)
	assert.Equal(t, id, c.incidentID)

	fixtures := []struct {
		in  string
		err error
	}{
		{"hp_approve:" + id, ErrMalformedControl},
		{"hp_approve:" + id + ":abc", ErrMalformedControl},
		{"hp_approve:" + id + ":0", ErrMalformedControl},
		{"hp_approve:nope:42", ErrMalformedControl},
		{"hp_dismiss:" + id + ":42", ErrMalformedControl},
		{"hp_dismiss:", ErrMalformedControl},
		{"hp_explode:" + id, ErrUnknownAction},
		{"", ErrUnknownAction},
	}
	for _, fix := range fixtures {
		_, err := parseControl(fix.in)
		assert.ErrorIs(t, err, fix.err, fix.in)
	}
}

func TestControlDisabled(t *testing.T) {
	id := uuid.NewString()
	live := &discordgo.Message{Components: approvalControls(id, "42", false)}
	done := &discordgo.Message{Components: approvalControls(id, "42", true)}

	assert.False(t, controlDisabled(live, dismissID(id)))
	assert.True(t, controlDisabled(done, dismissID(id)))
	assert.True(t, controlDisabled(done, approveID(id, "42")))
	assert.False(t, controlDisabled(nil, dismissID(id)))

	// API payloads decode to pointers
	decoded := &discordgo.Message{Components: []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{CustomID: dismissID(id), Disabled: true},
		}},
	}}
	assert.True(t, controlDisabled(decoded, dismissID(id)))
	assert.Equal(t, "", approveTarget(decoded))
	assert.Equal(t, "42", approveTarget(live))
}

func TestRegistryBeginIsExclusive(t *testing.T) {
	r, err := NewRegistry(8)
	require.NoError(t, err)
	id := uuid.NewString()
	r.Add(&PendingApproval{IncidentID: id, State: StateProposed})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Begin(id, func() *PendingApproval { return nil }); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	r.Finish(id, StateDismissed, "7")
	_, err = r.Begin(id, func() *PendingApproval { return nil })
	assert.ErrorIs(t, err, ErrNotProposed)

	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, StateDismissed, got.State)
	assert.True(t, got.State.Terminal())
	assert.Equal(t, "7", got.ResolvedBy)
}

func TestRegistryRebuildsUnknownReports(t *testing.T) {
	r, err := NewRegistry(8)
	require.NoError(t, err)
	id := uuid.NewString()

	_, err = r.Begin(id, func() *PendingApproval { return nil })
	assert.ErrorIs(t, err, ErrUnknownReport)

	rec, err := r.Begin(id, func() *PendingApproval {
		return &PendingApproval{IncidentID: id, UserID: "42", State: StateProposed}
	})
	require.NoError(t, err)
	assert.Equal(t, "42", rec.UserID)
	assert.Equal(t, StateResolving, rec.State)
}
