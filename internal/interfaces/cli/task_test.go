package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/pkg/client"
	"github.com/qaioz/molstore/pkg/errors"
)

func newTaskServer(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/t-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Contains(t, r.Header.Get("User-Agent"), "molstore-cli/")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestNewTaskCmd(t *testing.T) {
	cmd := NewTaskCmd()
	assert.Equal(t, "task", cmd.Use)
	f := cmd.PersistentFlags().Lookup("server")
	require.NotNil(t, f)
	assert.Equal(t, defaultServerURL, f.DefValue)
}

func TestTask_StatusText(t *testing.T) {
	url := newTaskServer(t, `{"status":"FAILURE","error":"Invalid SMILES string"}`)

	out, _, err := runCLI(t, newTestDeps().deps(), "-o", "text", "task", "status", "--server", url, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "FAILURE\tInvalid SMILES string\n", out)
}

func TestTask_StatusJSON(t *testing.T) {
	url := newTaskServer(t, `{"status":"PENDING"}`)

	out, _, err := runCLI(t, newTestDeps().deps(), "-o", "json", "task", "status", "--server", url, "t-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"PENDING"}`, out)
}

func TestTask_WaitPrintsMolecules(t *testing.T) {
	url := newTaskServer(t, `{"status":"SUCCESS","result":[{"molecule_id":3,"smiles":"CCO","name":"ethanol","mass":46.069}]}`)

	out, _, err := runCLI(t, newTestDeps().deps(), "task", "wait", "--server", url, "t-1")
	require.NoError(t, err)
	for _, want := range []string{"SMILES", "CCO", "ethanol", "46.069"} {
		assert.Contains(t, out, want)
	}

	out, _, err = runCLI(t, newTestDeps().deps(), "-o", "json", "task", "wait", "--server", url, "t-1")
	require.NoError(t, err)
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.EqualValues(t, 3, got[0]["molecule_id"])
}

func TestTask_WaitEmptyAndFailed(t *testing.T) {
	out, _, err := runCLI(t, newTestDeps().deps(), "task", "wait", "--server",
		newTaskServer(t, `{"status":"SUCCESS","result":[]}`), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "No molecules found.\n", out)

	_, _, err = runCLI(t, newTestDeps().deps(), "task", "wait", "--server",
		newTaskServer(t, `{"status":"FAILURE","error":"boom"}`), "t-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSubstructureSearchFailed))
}

func TestTask_Errors(t *testing.T) {
	url := newTaskServer(t, `{}`)

	_, _, err := runCLI(t, newTestDeps().deps(), "task", "status", "--server", url, "missing")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())

	_, _, err = runCLI(t, newTestDeps().deps(), "task", "status", "--server", "ftp://nope", "t-1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

//Personal.AI order the ending
