package mail

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) DialAndSend(msgs ...*gomail.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

func exportData() ExportEmailData {
	return ExportEmailData{
		Title:     "NRI 1504 Leads",
		Filename:  "NRI-1504-Leads-2025-05-01.xlsx",
		LeadCount: 12,
		Filters:   "status=pushed",
	}
}

func TestBuildExportMessage(t *testing.T) {
	s := NewEmailSender("smtp.local", 587, "u", "p", "reports@example.com")

	m, err := s.BuildExportMessage([]string{"ops@example.com", "sales@example.com"}, exportData(), []byte("xlsx-bytes"))
	require.NoError(t, err)

	assert.Equal(t, []string{"reports@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"ops@example.com", "sales@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"NRI 1504 Leads export: NRI-1504-Leads-2025-05-01.xlsx"}, m.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	out := raw.String()
	assert.True(t, strings.Contains(out, "NRI-1504-Leads-2025-05-01.xlsx"))
	assert.True(t, strings.Contains(out, "12 leads"))
}

func TestBuildExportMessageRequiresRecipients(t *testing.T) {
	s := NewEmailSender("smtp.local", 587, "u", "p", "reports@example.com")
	_, err := s.BuildExportMessage(nil, exportData(), nil)
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSendWithWrapsDialerError(t *testing.T) {
	s := NewEmailSender("smtp.local", 587, "u", "p", "reports@example.com")
	d := new(MockDialer)
	boom := errors.New("connection refused")
	d.On("DialAndSend", mock.Anything).Return(boom)

	err := s.sendWith(d, []string{"ops@example.com"}, exportData(), []byte("x"))

	assert.ErrorIs(t, err, boom)
	d.AssertNumberOfCalls(t, "DialAndSend", 1)
}
