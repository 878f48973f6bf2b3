package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/heirloom/internal/client/api"
	"github.com/dmitrijs2005/heirloom/internal/client/storage"
	"github.com/dmitrijs2005/heirloom/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

type fakeBackend struct {
	tokens api.TokenPair

	registerAddr string
	loginErr     error

	addedContent *api.MessageContent
	addIndex     int

	claimOwner string
	claimIndex int

	retrieved *api.RetrievedMessage
}

func (f *fakeBackend) Register(ctx context.Context, address, password string) error {
	f.registerAddr = address
	f.tokens = api.TokenPair{AccessToken: "at", RefreshToken: "rt"}
	return nil
}
func (f *fakeBackend) Login(ctx context.Context, address, password string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.tokens = api.TokenPair{AccessToken: "at", RefreshToken: "rt"}
	return nil
}
func (f *fakeBackend) Tokens() api.TokenPair { return f.tokens }
func (f *fakeBackend) SetTokens(t api.TokenPair) { f.tokens = t }
func (f *fakeBackend) Reachable(ctx context.Context) error { return nil }

func (f *fakeBackend) RegisterAccount(ctx context.Context, name string, checkIn, grace time.Duration) error {
	return nil
}
func (f *fakeBackend) Ping(ctx context.Context) error { return nil }
func (f *fakeBackend) Deposit(ctx context.Context, amount uint64) error { return nil }
func (f *fakeBackend) Status(ctx context.Context, address string) (*api.StatusInfo, error) {
	return &api.StatusInfo{Status: "alive"}, nil
}
func (f *fakeBackend) Balance(ctx context.Context, address string) (uint64, error) { return 0, nil }
func (f *fakeBackend) MarkDeceased(ctx context.Context, address string) error { return nil }

func (f *fakeBackend) AddCouncilMember(ctx context.Context, member string) error { return nil }
func (f *fakeBackend) RemoveCouncilMember(ctx context.Context, member string) error { return nil }
func (f *fakeBackend) Serving(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeBackend) Vote(ctx context.Context, address string, alive bool) error { return nil }
func (f *fakeBackend) VoteTally(ctx context.Context, address string) (*protocol.Tally, error) {
	return &protocol.Tally{}, nil
}

func (f *fakeBackend) AddMessage(ctx context.Context, content api.MessageContent) (int, error) {
	f.addedContent = &content
	return f.addIndex, nil
}
func (f *fakeBackend) Claim(ctx context.Context, address string, index int) error {
	f.claimOwner = address
	f.claimIndex = index
	return nil
}
func (f *fakeBackend) Retrieve(ctx context.Context, address string, index int) (*api.RetrievedMessage, error) {
	return f.retrieved, nil
}

func newTestApp(t *testing.T, server backend) *App {
	t.Helper()
	store, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &App{
		server: server,
		store:  store,
		reader: bufio.NewReader(strings.NewReader("")),
	}
}

// stubInput replaces the interactive prompts with canned answers, consumed
// in order.
func stubInput(t *testing.T, answers []string, password []byte) {
	t.Helper()

	origSimple, origPassword, origMultiline := getSimpleText, getPassword, getMultiline
	origPrint := printlnFn
	t.Cleanup(func() {
		getSimpleText, getPassword, getMultiline = origSimple, origPassword, origMultiline
		printlnFn = origPrint
	})

	next := func() string {
		require.NotEmpty(t, answers, "more prompts than canned answers")
		a := answers[0]
		answers = answers[1:]
		return a
	}
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return next(), nil }
	getMultiline = func(*bufio.Reader, string, io.Writer) (string, error) { return next(), nil }
	getPassword = func(io.Writer) ([]byte, error) { return password, nil }
	printlnFn = func(...any) (int, error) { return 0, nil }
}

// ------------ tests ------------

func TestRegister_SavesSession(t *testing.T) {
	fake := &fakeBackend{}
	a := newTestApp(t, fake)
	stubInput(t, []string{"alice"}, []byte("secret"))

	require.NoError(t, a.Register(context.Background()))

	assert.Equal(t, "alice", fake.registerAddr)
	assert.Equal(t, "alice", a.address)
	assert.Equal(t, ModeOnline, a.Mode)

	s, err := a.store.Session.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "alice", s.Address)
	assert.Equal(t, "at", s.AccessToken)
}

func TestLogin_OfflineFallback(t *testing.T) {
	fake := &fakeBackend{loginErr: api.ErrUnavailable}
	a := newTestApp(t, fake)
	a.address = "alice" // restored from a previous session
	stubInput(t, []string{"alice"}, []byte("secret"))

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, ModeOffline, a.Mode)
}

func TestLogin_UnavailableAndUnknownAddressFails(t *testing.T) {
	fake := &fakeBackend{loginErr: api.ErrUnavailable}
	a := newTestApp(t, fake)
	stubInput(t, []string{"bob"}, []byte("secret"))

	err := a.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, ModeDisabled, a.Mode)
}

func TestAddMessage_PadsRecipientID(t *testing.T) {
	fake := &fakeBackend{addIndex: 2}
	a := newTestApp(t, fake)
	stubInput(t, []string{
		"bob@example.com", // recipient
		"0102",            // key share hex
		"aabbcc",          // payload hex (multiline prompt)
		"for bob",         // annotation
	}, nil)

	require.NoError(t, a.AddMessage(context.Background()))

	require.NotNil(t, fake.addedContent)
	c := fake.addedContent
	require.Len(t, c.Limbs, protocol.RecipientIDLimbs)
	for _, limb := range c.Limbs {
		assert.Len(t, limb, protocol.LimbSize)
	}
	assert.Equal(t, len("bob@example.com"), c.RecipientIDLen)
	assert.Equal(t, []byte("bob@example.com"), c.Limbs[0][:c.RecipientIDLen])
	assert.Equal(t, []byte{0x01, 0x02}, c.KeyShare)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, c.Payload)
	assert.Equal(t, "for bob", c.Annotation)
}

func TestPadRecipientID_TooLong(t *testing.T) {
	tooLong := make([]byte, protocol.RecipientIDLimbs*protocol.LimbSize+1)
	_, _, err := padRecipientID(tooLong)
	require.Error(t, err)
}

func TestRetrieve_CachesMessage(t *testing.T) {
	fake := &fakeBackend{retrieved: &api.RetrievedMessage{
		Payload:    []byte("payload"),
		KeyShare:   []byte("share"),
		Annotation: "last words",
		Commitment: "abcd",
	}}
	a := newTestApp(t, fake)
	stubInput(t, []string{"alice", "0"}, nil)

	require.NoError(t, a.Retrieve(context.Background()))

	m, err := a.store.Messages.Get(context.Background(), "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), m.Payload)
	assert.Equal(t, "last words", m.Annotation)
	assert.Equal(t, "abcd", m.Commitment)
}

func TestClaim_PassesOwnerAndIndex(t *testing.T) {
	fake := &fakeBackend{}
	a := newTestApp(t, fake)
	stubInput(t, []string{"alice", "3"}, nil)

	require.NoError(t, a.Claim(context.Background()))
	assert.Equal(t, "alice", fake.claimOwner)
	assert.Equal(t, 3, fake.claimIndex)
}

func TestLogout_ClearsSession(t *testing.T) {
	fake := &fakeBackend{tokens: api.TokenPair{AccessToken: "at"}}
	a := newTestApp(t, fake)
	a.address = "alice"

	require.NoError(t, a.Logout(context.Background()))
	assert.Empty(t, a.address)
	assert.Empty(t, fake.tokens.AccessToken)

	s, err := a.store.Session.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}
