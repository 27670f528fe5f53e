package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/transly/internal/api"
	"github.com/valpere/transly/internal/plans"
)

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "report.de.docx", defaultOutputPath("report.docx", "de"))
	assert.Equal(t, "dir/notes.uk.txt", defaultOutputPath("dir/notes.txt", "uk"))
	assert.Equal(t, "README.fr", defaultOutputPath("README", "fr"))
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	err := printHistory(&buf, []api.HistoryEntry{
		{ID: 7, SourceLanguage: "en", TargetLanguage: "de", CharacterCount: 1200, CreatedAt: api.Timestamp{Time: time.Now()}},
		{ID: 8, SourceLanguage: "fr", TargetLanguage: "en", CharacterCount: 90, DocumentType: "pdf", FileName: "a.pdf", CreatedAt: api.Timestamp{Time: time.Now()}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "text")
	assert.Contains(t, lines[2], "a.pdf")
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"translate", "translate-file", "login", "register", "logout", "whoami", "status", "history", "plans", "subscribe", "config"}
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestCheckoutMessage(t *testing.T) {
	pro, ok := plans.Lookup("pro")
	require.True(t, ok)

	msg := checkoutMessage(pro, &api.CheckoutSession{SessionID: "cs_test_1"})
	assert.Equal(t, "Checkout session for Professional ($19.99/month): cs_test_1\n", msg)

	msg = checkoutMessage(pro, &api.CheckoutSession{SessionID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"})
	assert.Contains(t, msg, "cs_test_1\n")
	assert.Contains(t, msg, "Complete the payment at https://checkout.stripe.com/c/pay/cs_test_1\n")
}
