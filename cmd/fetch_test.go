package cmd

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxreceipts/internal/credential"
	"github.com/teemow/inboxreceipts/internal/extract"
	"github.com/teemow/inboxreceipts/internal/gmail"
	"github.com/teemow/inboxreceipts/internal/gmail/gmailtest"
)

const testToken = "ya29.cli-token"

func newFakeGmail(t *testing.T) *gmailtest.Server {
	t.Helper()
	srv := gmailtest.NewServer()
	srv.Token = testToken
	t.Cleanup(srv.Close)
	return srv
}

func fetchArgs(srv *gmailtest.Server, dir string, extra ...string) []string {
	args := []string{
		"fetch",
		"--api-endpoint", srv.Endpoint(),
		"--userinfo-endpoint", srv.Endpoint(),
		"--output-dir", dir,
	}
	return append(args, extra...)
}

func TestFetch_EndToEnd(t *testing.T) {
	isolate(t)
	memoryCredentials(t)

	srv := newFakeGmail(t)
	srv.Pages = [][]string{{"m1"}}
	srv.AddMessage(gmailtest.Message("m1", gmailtest.AttachmentPart("1", "receipt.txt", "a1")))
	srv.AddAttachment("m1", "a1", []byte("thanks for your order"))

	dir := filepath.Join(t.TempDir(), "attachments")
	out, _, err := execute(t, "", fetchArgs(srv, dir, "--token", testToken)...)
	require.NoError(t, err)

	want := "Total messages found: 1\n" +
		"Saved attachment: " + filepath.Join(dir, "receipt.txt") + "\n" +
		"Extracted text from receipt.txt:\n" + extract.Unsupported + "\n" +
		"Total attachments processed: 1\n"
	assert.Equal(t, want, out)

	data, err := os.ReadFile(filepath.Join(dir, "receipt.txt"))
	require.NoError(t, err)
	assert.Equal(t, "thanks for your order", string(data))
	assert.Equal(t, []string{gmail.ReceiptQuery}, srv.Queries())
}

func TestFetch_DefaultsToFetchWithoutSubcommand(t *testing.T) {
	isolate(t)
	memoryCredentials(t)
	srv := newFakeGmail(t)

	args := defaultToFetch(fetchArgs(srv, t.TempDir(), "--token", testToken, "--brand", "Acme")[1:])
	out, _, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, "Total messages found: 0\nTotal attachments processed: 0\n", out)
	assert.Equal(t, []string{gmail.BuildQuery("Acme")}, srv.Queries())
}

func TestFetch_QueryOverridesBrand(t *testing.T) {
	isolate(t)
	memoryCredentials(t)
	srv := newFakeGmail(t)

	_, _, err := execute(t, "", fetchArgs(srv, t.TempDir(),
		"--token", testToken, "--brand", "Acme", "--query", "from:billing@example.com")...)
	require.NoError(t, err)
	assert.Equal(t, []string{"from:billing@example.com"}, srv.Queries())
}

func TestFetch_TokenFromEnvironment(t *testing.T) {
	isolate(t)
	memoryCredentials(t)
	srv := newFakeGmail(t)
	t.Setenv("INBOXRECEIPTS_TOKEN", testToken)

	out, _, err := execute(t, "", fetchArgs(srv, t.TempDir())...)
	require.NoError(t, err)
	assert.Contains(t, out, "Total messages found: 0")
}

func TestFetch_TokenFromKeyring(t *testing.T) {
	isolate(t)
	store := memoryCredentials(t)
	require.NoError(t, store.Set(credential.TokenKey, testToken))
	srv := newFakeGmail(t)

	out, _, err := execute(t, "", fetchArgs(srv, t.TempDir())...)
	require.NoError(t, err)
	assert.Contains(t, out, "Total messages found: 0")
}

func TestFetch_NoToken(t *testing.T) {
	isolate(t)
	memoryCredentials(t)
	srv := newFakeGmail(t)

	out, _, err := execute(t, "", fetchArgs(srv, t.TempDir())...)
	require.NoError(t, err)
	assert.Equal(t, "No access token provided. Exiting.\n", out)
	assert.Empty(t, srv.Requests(), "no request is made without a token")
}

func TestFetch_FailureIsReportedAndExitsCleanly(t *testing.T) {
	isolate(t)
	memoryCredentials(t)
	srv := newFakeGmail(t)
	srv.UserInfoStatus = http.StatusUnauthorized

	out, errOut, err := execute(t, "", fetchArgs(srv, t.TempDir(), "--token", testToken)...)
	require.NoError(t, err)
	assert.Contains(t, out, "An error occurred: ")
	assert.NotContains(t, out, "Total messages found")
	assert.Contains(t, errOut, "kind=auth")
}

func TestFetch_StrictExit(t *testing.T) {
	isolate(t)
	memoryCredentials(t)
	srv := newFakeGmail(t)

	out, _, err := execute(t, "", fetchArgs(srv, t.TempDir(), "--token", "wrong", "--strict-exit")...)
	require.Error(t, err)
	assert.Contains(t, out, "An error occurred: ")
}

func TestFetch_MetricsAddrRequiresPrometheus(t *testing.T) {
	isolate(t)
	memoryCredentials(t)
	srv := newFakeGmail(t)

	_, _, err := execute(t, "", fetchArgs(srv, t.TempDir(),
		"--token", testToken, "--metrics-exporter", "stdout", "--metrics-addr", "127.0.0.1:0")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics server")
	assert.Empty(t, srv.Requests())
}

func TestFetch_FailureRecordCarriesTraceID(t *testing.T) {
	isolate(t)
	memoryCredentials(t)
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1")
	srv := newFakeGmail(t)

	_, errOut, err := execute(t, "", fetchArgs(srv, t.TempDir(),
		"--token", "wrong", "--tracing-exporter", "stdout")...)
	require.NoError(t, err)
	assert.Regexp(t, `msg="fetch failed".* trace_id=[0-9a-f]{32}`, errOut)
}
