package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type stubRunoffs struct {
	ports.RunoffService
	started int64
}

func (s *stubRunoffs) DetectAndCreateRunoffs(context.Context) ([]domain.RunoffElection, error) {
	return []domain.RunoffElection{{ID: 3, OriginalPositionName: "President", Round: 1}}, nil
}

func (s *stubRunoffs) StartRunoffElection(_ context.Context, id int64) (*domain.RunoffElection, error) {
	s.started = id
	return &domain.RunoffElection{ID: id, Status: domain.RunoffActive}, nil
}

func (s *stubRunoffs) CompleteRunoffElection(_ context.Context, id int64) (*domain.RunoffElection, error) {
	return &domain.RunoffElection{ID: id, Status: domain.RunoffCompleted}, nil
}

type stubAudit struct {
	ports.AuditService
	minRisk int
}

func (s *stubAudit) SuspiciousVotes(_ context.Context, minRisk int) ([]domain.VoteAuditResult, error) {
	s.minRisk = minRisk
	return nil, nil
}

type stubAuth struct {
	ports.AuthService
	vouchers []string
}

func (s *stubAuth) ImportVouchers(_ context.Context, vouchers []string) (int, error) {
	s.vouchers = vouchers
	return len(vouchers) - 1, nil
}

func runCmd(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	a.out = &out
	closed := false
	cmd := newRootCmd(func(context.Context) (*app, func(), error) {
		return a, func() { closed = true }, nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "app should be closed after the command")
	}
	return out.String(), err
}

func TestRunoffCommands(t *testing.T) {
	runoffs := &stubRunoffs{}
	a := &app{runoffs: runoffs}

	out, err := runCmd(t, a, "runoff", "detect")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 1 runoff election(s)")
	assert.Contains(t, out, `"original_position_name": "President"`)

	_, err = runCmd(t, a, "runoff", "start", "3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), runoffs.started)

	_, err = runCmd(t, a, "runoff", "start", "x")
	assert.ErrorContains(t, err, "invalid id")

	out, err = runCmd(t, a, "runoff", "complete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "another tie")
}

func TestSuspiciousCommand_MinRisk(t *testing.T) {
	audit := &stubAudit{}
	a := &app{audit: audit}

	_, err := runCmd(t, a, "suspicious")
	require.NoError(t, err)
	assert.Equal(t, 30, audit.minRisk)

	_, err = runCmd(t, a, "suspicious", "--min-risk", "60")
	require.NoError(t, err)
	assert.Equal(t, 60, audit.minRisk)
}

func TestImportVouchersCommand_Stdin(t *testing.T) {
	auth := &stubAuth{}
	a := &app{auth: auth, in: strings.NewReader("# header\nV-1\n\n  V-2  \nV-1\n")}

	out, err := runCmd(t, a, "import-vouchers")
	require.NoError(t, err)
	assert.Equal(t, []string{"V-1", "V-2", "V-1"}, auth.vouchers)
	assert.Contains(t, out, "Imported 2 of 3 voucher(s)")
}

func TestReadVouchers(t *testing.T) {
	vouchers, err := readVouchers(strings.NewReader("A\r\nB\n#C\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, vouchers)
}
