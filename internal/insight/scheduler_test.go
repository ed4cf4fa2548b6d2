package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticUsers struct {
	ids []string
	err error
}

func (s staticUsers) ListUserIDs(context.Context) ([]string, error) {
	return s.ids, s.err
}

type recordingGenerator struct {
	calls  []string
	failOn string
}

func (g *recordingGenerator) Generate(_ context.Context, userID string) (*Report, error) {
	g.calls = append(g.calls, userID)
	if userID == g.failOn {
		return nil, errors.New("boom")
	}
	return &Report{Created: 1}, nil
}

func TestGenerateForAllUsers_ContinuesPastFailures(t *testing.T) {
	generator := &recordingGenerator{failOn: "b"}

	failed, err := GenerateForAllUsers(context.Background(), staticUsers{ids: []string{"a", "b", "c"}}, generator)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"a", "b", "c"}, generator.calls)
}

func TestGenerateForAllUsers_ListError(t *testing.T) {
	generator := &recordingGenerator{}
	listErr := errors.New("no db")

	_, err := GenerateForAllUsers(context.Background(), staticUsers{err: listErr}, generator)
	assert.ErrorIs(t, err, listErr)
	assert.Empty(t, generator.calls)
}

func TestStartScheduler_InvalidSpec(t *testing.T) {
	_, err := StartScheduler("not a cron spec", staticUsers{}, &recordingGenerator{})
	assert.Error(t, err)

	c, err := StartScheduler("@every 24h", staticUsers{}, &recordingGenerator{})
	require.NoError(t, err)
	c.Stop()
}
