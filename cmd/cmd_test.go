package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/credential"
	"github.com/abhisek/stylequiz/internal/devserver"
	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/store"
)

// platform starts an in-memory platform and returns a client logged in as
// a new student.
func platform(t *testing.T, loggedIn bool) *gateway.Client {
	t.Helper()
	cfg := devserver.DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	ts := httptest.NewServer(devserver.New(cfg).Handler())
	t.Cleanup(ts.Close)

	gc := gateway.DefaultConfig()
	gc.BaseURL = ts.URL
	gc.Retry.MaxAttempts = 1
	client, err := gateway.New(gc, credential.NewMemoryStore(""))
	require.NoError(t, err)
	if loggedIn {
		_, err = client.Register(context.Background(), gateway.RegisterRequest{
			Email:           "learner@example.com",
			Password:        "secret123",
			ConfirmPassword: "secret123",
			Role:            gateway.RoleStudent,
		})
		require.NoError(t, err)
	}
	return client
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testCommand(out *bytes.Buffer) *cobra.Command {
	c := &cobra.Command{}
	c.SetContext(context.Background())
	c.SetOut(out)
	return c
}

func TestPlayTest_Completes(t *testing.T) {
	client := platform(t, true)
	st := openStore(t)
	ctrl := assessment.NewController(client,
		assessment.WithObserver(store.NewAttemptRecorder(st.Events(), logging.Nop())))

	var out bytes.Buffer
	p := newPrompter(strings.NewReader(strings.Repeat("1\n", 20)), &out)
	subject := assessment.Subject{ID: "math", Name: "Mathematics"}
	require.NoError(t, playTest(context.Background(), ctrl, subject, p, &out))

	assert.Equal(t, assessment.StateCompleted, ctrl.State())
	assert.Contains(t, out.String(), "Questions:  5")
	assert.Contains(t, out.String(), "Accuracy:")

	attempts, err := st.Events().History(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, store.ActionComplete, attempts[0].Action)
	assert.Equal(t, 5, attempts[0].Answered)
}

func TestPlayTest_RepromptsThenQuits(t *testing.T) {
	client := platform(t, true)
	st := openStore(t)
	ctrl := assessment.NewController(client,
		assessment.WithObserver(store.NewAttemptRecorder(st.Events(), logging.Nop())))

	var out bytes.Buffer
	p := newPrompter(strings.NewReader("9\nabc\nq\n"), &out)
	subject := assessment.Subject{ID: "math", Name: "Mathematics"}
	require.NoError(t, playTest(context.Background(), ctrl, subject, p, &out))

	assert.Equal(t, 2, strings.Count(out.String(), "Enter a number from 1 to 4"))
	assert.Contains(t, out.String(), "Test abandoned.")
	assert.Equal(t, assessment.StateIdle, ctrl.State())

	attempts, err := st.Events().History(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, store.ActionAbandon, attempts[0].Action)
}

func TestPlayTest_StartFailure(t *testing.T) {
	client := platform(t, false)
	ctrl := assessment.NewController(client)

	var out bytes.Buffer
	p := newPrompter(strings.NewReader(""), &out)
	err := playTest(context.Background(), ctrl, assessment.Subject{ID: "math"}, p, &out)
	assert.Error(t, err)
	assert.Equal(t, assessment.StateSubjectChosen, ctrl.State())
}

func TestTakeQuestionnaire_SyncsAndCaches(t *testing.T) {
	client := platform(t, true)
	st := openStore(t)

	var out bytes.Buffer
	cmd := testCommand(&out)
	p := newPrompter(strings.NewReader("b\n"+strings.Repeat("2\n", 30)), &out)
	res, note, err := takeQuestionnaire(cmd, client, st.Vark(), logging.Nop(), p)
	require.NoError(t, err)

	assert.Empty(t, note)
	assert.True(t, res.Type.Valid())
	assert.Positive(t, res.Distribution.Sum())
	assert.Contains(t, out.String(), "This is the first question.")

	rec, err := st.Vark().Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Synced)
	assert.Equal(t, res.Type, rec.Type)
}

func TestTakeQuestionnaire_OfflineKeepsLocalResult(t *testing.T) {
	client := platform(t, false)
	st := openStore(t)

	var out bytes.Buffer
	cmd := testCommand(&out)
	p := newPrompter(strings.NewReader(strings.Repeat("1\n", 30)), &out)
	res, note, err := takeQuestionnaire(cmd, client, st.Vark(), logging.Nop(), p)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "using the built-in one")
	assert.Contains(t, note, "Log in")
	assert.True(t, res.Type.Valid())

	rec, err := st.Vark().Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Synced)
}

func TestTakeQuestionnaire_Quit(t *testing.T) {
	client := platform(t, true)
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("q\n"), &out)
	_, _, err := takeQuestionnaire(testCommand(&out), client, nil, logging.Nop(), p)
	assert.ErrorIs(t, err, errQuit)
}

func TestFindSubject(t *testing.T) {
	subjects := []assessment.Subject{
		{ID: "math", Name: "Mathematics"},
		{ID: "sci", Name: "Science"},
	}
	s, ok := findSubject(subjects, "sci")
	assert.True(t, ok)
	assert.Equal(t, "Science", s.Name)

	s, ok = findSubject(subjects, "mathematics")
	assert.True(t, ok)
	assert.Equal(t, "math", s.ID)

	_, ok = findSubject(subjects, "history")
	assert.False(t, ok)
}

func TestPrompter(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("0\n3\nyes\nnope\n"), &out)

	i, err := p.choice("> ", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	ok, err := p.confirm("Sure?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.confirm("Sure?")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.line("> ")
	assert.Error(t, err)
}

func TestFriendly(t *testing.T) {
	err := friendly(&assessment.GatewayError{Op: "start test", Status: 500})
	assert.EqualError(t, err, "Could not start test. Check your connection and try again.")

	plain := assert.AnError
	assert.Same(t, plain, friendly(plain))
}
