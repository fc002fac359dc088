package dnd5e_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/grimoire/internal/dnd5e"
	"github.com/agentstation/grimoire/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *dnd5e.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return dnd5e.New(dnd5e.WithBaseURL(server.URL))
}

func TestListClasses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classes", r.URL.Path)
		w.Write([]byte(`{"count":2,"results":[
			{"index":"wizard","name":"Wizard","url":"/api/2014/classes/wizard"},
			{"index":"fighter","name":"Fighter","url":"/api/2014/classes/fighter"}
		]}`))
	})

	classes, err := client.ListClasses(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "wizard", classes[0].Index)
}

func TestClassSpellCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classes/wizard/spells", r.URL.Path)
		w.Write([]byte(`{"count":319,"results":[]}`))
	})

	count, err := client.ClassSpellCount(context.Background(), "wizard")
	require.NoError(t, err)
	assert.Equal(t, 319, count)
}

func TestListClassSpells(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":1,"results":[{"index":"fireball","name":"Fireball","url":"/api/2014/spells/fireball"}]}`))
	})

	refs, err := client.ListClassSpells(context.Background(), "wizard")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "fireball", refs[0].Index)
}

func TestGetSpell(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spells/fireball", r.URL.Path)
		w.Write([]byte(`{
			"index":"fireball","name":"Fireball","level":3,
			"school":{"index":"evocation","name":"Evocation"},
			"classes":[{"index":"wizard","name":"Wizard"}],
			"desc":["A bright streak flashes."]
		}`))
	})

	s, err := client.GetSpell(context.Background(), "fireball")
	require.NoError(t, err)
	assert.Equal(t, "Fireball", s.Name)
	assert.Equal(t, 3, s.Level)
	assert.Equal(t, "Evocation", s.SchoolName())
}

func TestNon2xxIsAPIError(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, errors.IsNotFound},
		{"rate limited", http.StatusTooManyRequests, errors.IsRateLimited},
		{"server error", http.StatusInternalServerError, errors.IsUpstreamUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})

			_, err := client.GetSpell(context.Background(), "missing")
			require.Error(t, err)

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.True(t, tc.check(err))
		})
	}
}

func TestMalformedBodyIsParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": "not a number"`))
	})

	_, err := client.ListClasses(context.Background())
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListClasses(ctx)
	assert.Error(t, err)
}
