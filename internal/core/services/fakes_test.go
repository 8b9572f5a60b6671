package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type memCache struct {
	mu    sync.Mutex
	items map[string]any
}

func newMemCache() *memCache { return &memCache{items: map[string]any{}} }

func (c *memCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *memCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *memCache) Delete(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
}

type memRecorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (r *memRecorder) Record(_ context.Context, e domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *memRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// codeSet answers VerificationCodeExists from a fixed set.
type codeSet map[string]bool

func (c codeSet) VerificationCodeExists(_ context.Context, code string) (bool, error) {
	return c[code], nil
}

// fakeRunoffStore keeps primary tallies, runoffs, rosters and runoff votes
// in memory.
type fakeRunoffStore struct {
	mu         sync.Mutex
	tallies    []domain.CandidateTally
	runoffs    map[int64]*domain.RunoffElection
	candidates map[int64][]domain.RunoffCandidate
	votes      map[int64][]domain.RunoffVote
	nextID     int64
	saveErrs   []error
	talliesErr error
}

func newFakeRunoffStore(tallies ...domain.CandidateTally) *fakeRunoffStore {
	return &fakeRunoffStore{
		tallies:    tallies,
		runoffs:    map[int64]*domain.RunoffElection{},
		candidates: map[int64][]domain.RunoffCandidate{},
		votes:      map[int64][]domain.RunoffVote{},
	}
}

func (f *fakeRunoffStore) CandidateTallies(context.Context) ([]domain.CandidateTally, error) {
	return f.tallies, f.talliesErr
}

func (f *fakeRunoffStore) Create(_ context.Context, r *domain.RunoffElection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.runoffs {
		if existing.OriginalPositionID == r.OriginalPositionID && existing.Round == r.Round {
			return domain.ErrRunoffExists
		}
	}
	f.nextID++
	r.ID = f.nextID
	stored := *r
	f.runoffs[r.ID] = &stored
	for _, c := range r.TiedCandidates {
		f.candidates[r.ID] = append(f.candidates[r.ID], domain.RunoffCandidate{
			RunoffElectionID:  r.ID,
			CandidateID:       c.CandidateID,
			CandidateName:     c.CandidateName,
			OriginalVoteCount: c.OriginalVoteCount,
		})
	}
	return nil
}

func (f *fakeRunoffStore) GetByID(_ context.Context, id int64) (*domain.RunoffElection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runoffs[id]
	if !ok {
		return nil, domain.ErrRunoffNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeRunoffStore) List(context.Context) ([]domain.RunoffElection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.RunoffElection{}
	for _, r := range f.runoffs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRunoffStore) ListByPosition(_ context.Context, positionID int64) ([]domain.RunoffElection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RunoffElection
	for _, r := range f.runoffs {
		if r.OriginalPositionID == positionID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRunoffStore) Candidates(_ context.Context, id int64) ([]domain.RunoffCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candidates[id], nil
}

func (f *fakeRunoffStore) MarkActive(_ context.Context, id int64, at time.Time) (*domain.RunoffElection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runoffs[id]
	if !ok || r.Status != domain.RunoffPending {
		return nil, nil
	}
	r.Status = domain.RunoffActive
	r.StartedAt = &at
	out := *r
	return &out, nil
}

func (f *fakeRunoffStore) MarkCompleted(_ context.Context, id int64, winner *int64, at time.Time) (*domain.RunoffElection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runoffs[id]
	if !ok || r.Status != domain.RunoffActive {
		return nil, nil
	}
	r.Status = domain.RunoffCompleted
	r.WinnerCandidateID = winner
	r.CompletedAt = &at
	out := *r
	return &out, nil
}

func (f *fakeRunoffStore) HasVoted(_ context.Context, id int64, voucher string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes[id] {
		if v.Voucher == voucher {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRunoffStore) IsCandidate(_ context.Context, id, candidateID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates[id] {
		if c.CandidateID == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRunoffStore) SaveVote(_ context.Context, v *domain.RunoffVote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saveErrs) > 0 {
		err := f.saveErrs[0]
		f.saveErrs = f.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range f.votes[v.RunoffElectionID] {
		if existing.Voucher == v.Voucher {
			return domain.ErrAlreadyVoted
		}
	}
	v.ID = int64(len(f.votes[v.RunoffElectionID]) + 1)
	f.votes[v.RunoffElectionID] = append(f.votes[v.RunoffElectionID], *v)
	return nil
}

func (f *fakeRunoffStore) Results(_ context.Context, id int64) ([]domain.RunoffResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RunoffResult
	for _, c := range f.candidates[id] {
		var n int64
		for _, v := range f.votes[id] {
			if v.CandidateID == c.CandidateID {
				n++
			}
		}
		out = append(out, domain.RunoffResult{CandidateID: c.CandidateID, CandidateName: c.CandidateName, VoteCount: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VoteCount > out[j].VoteCount })
	return out, nil
}

// fakeVoteStore backs the audit, vote and fraud fakes with one vote table.
type fakeVoteStore struct {
	mu         sync.Mutex
	votes      []domain.Vote
	voters     map[string]bool
	candidates map[int64]int64 // candidate -> position
	names      map[int64]string
	failing    map[string]error
	saveErrs   []error
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{
		voters:     map[string]bool{},
		candidates: map[int64]int64{},
		names:      map[int64]string{},
		failing:    map[string]error{},
	}
}

func (f *fakeVoteStore) addVote(v domain.Vote) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = int64(len(f.votes) + 1)
	f.votes = append(f.votes, v)
	return v.ID
}

func (f *fakeVoteStore) fail(method string) error {
	return f.failing[method]
}

func (f *fakeVoteStore) VoteDetail(_ context.Context, id int64) (*domain.VoteDetail, error) {
	if err := f.fail("VoteDetail"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.ID == id {
			return &domain.VoteDetail{Vote: v, CandidateName: f.names[v.CandidateID]}, nil
		}
	}
	return nil, domain.ErrVoteNotFound
}

func (f *fakeVoteStore) VoteIDs(context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.votes))
	for _, v := range f.votes {
		ids = append(ids, v.ID)
	}
	return ids, nil
}

func (f *fakeVoteStore) VoterExists(_ context.Context, voucher string) (bool, error) {
	if err := f.fail("VoterExists"); err != nil {
		return false, err
	}
	return f.voters[voucher], nil
}

func (f *fakeVoteStore) CandidateInPosition(_ context.Context, candidateID, positionID int64) (bool, error) {
	if err := f.fail("CandidateInPosition"); err != nil {
		return false, err
	}
	pos, ok := f.candidates[candidateID]
	return ok && pos == positionID, nil
}

func (f *fakeVoteStore) CountOtherVotes(_ context.Context, voucher string, positionID, excludeID int64) (int, error) {
	if err := f.fail("CountOtherVotes"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, v := range f.votes {
		if v.Voucher == voucher && v.PositionID == positionID && v.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (f *fakeVoteStore) CodeUsedElsewhere(_ context.Context, code string, excludeID int64) (bool, error) {
	if err := f.fail("CodeUsedElsewhere"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.VerificationCode == code && v.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVoteStore) CountVotesByVoucher(_ context.Context, voucher string) (int, error) {
	if err := f.fail("CountVotesByVoucher"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, v := range f.votes {
		if v.Voucher == voucher {
			n++
		}
	}
	return n, nil
}

func (f *fakeVoteStore) VerificationCodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.VerificationCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVoteStore) SaveBallot(_ context.Context, votes []*domain.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saveErrs) > 0 {
		err := f.saveErrs[0]
		f.saveErrs = f.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, nv := range votes {
		for _, v := range f.votes {
			if v.Voucher == nv.Voucher && v.PositionID == nv.PositionID {
				return domain.ErrAlreadyVoted
			}
		}
	}
	for _, nv := range votes {
		nv.ID = int64(len(f.votes) + 1)
		f.votes = append(f.votes, *nv)
	}
	return nil
}

func (f *fakeVoteStore) FindByCode(_ context.Context, code string) (*domain.VoteReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.VerificationCode == code {
			return &domain.VoteReceipt{
				VerificationCode: v.VerificationCode,
				PositionID:       v.PositionID,
				CandidateID:      v.CandidateID,
				CandidateName:    f.names[v.CandidateID],
				VotedAt:          v.VotedAt,
			}, nil
		}
	}
	return nil, domain.ErrVoteNotFound
}

func (f *fakeVoteStore) Exists(ctx context.Context, voucher string) (bool, error) {
	return f.VoterExists(ctx, voucher)
}

func (f *fakeVoteStore) Import(_ context.Context, vouchers []string) (int, error) {
	var n int
	for _, v := range vouchers {
		if !f.voters[v] {
			f.voters[v] = true
			n++
		}
	}
	return n, nil
}

type fakePositions struct {
	store     *fakeVoteStore
	positions []domain.Position
	listCalls int
}

func (f *fakePositions) ListWithCandidates(context.Context) ([]domain.Position, error) {
	f.listCalls++
	return f.positions, nil
}

func (f *fakePositions) GetByID(_ context.Context, id int64) (*domain.Position, error) {
	for _, p := range f.positions {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, domain.ErrPositionNotFound
}

func (f *fakePositions) Create(_ context.Context, p *domain.Position) error {
	p.ID = int64(len(f.positions) + 1)
	f.positions = append(f.positions, *p)
	return nil
}

func (f *fakePositions) CreateCandidate(_ context.Context, c *domain.Candidate) error {
	for i := range f.positions {
		if f.positions[i].ID == c.PositionID {
			c.ID = int64(100 + len(f.positions[i].Candidates) + 1)
			f.positions[i].Candidates = append(f.positions[i].Candidates, *c)
			return nil
		}
	}
	return domain.ErrPositionNotFound
}

func (f *fakePositions) CandidateBelongs(ctx context.Context, candidateID, positionID int64) (bool, error) {
	return f.store.CandidateInPosition(ctx, candidateID, positionID)
}

// fakeElection reports a fixed status.
type fakeElection struct {
	status domain.ElectionStatus
}

func (f *fakeElection) Status(context.Context) (*domain.ElectionStatus, error) {
	s := f.status
	return &s, nil
}

func (f *fakeElection) Transition(context.Context, domain.ElectionPhase) (*domain.ElectionStatus, error) {
	return nil, nil
}

func (f *fakeElection) UpdateSettings(context.Context, domain.ElectionSettings) (*domain.ElectionStatus, error) {
	return nil, nil
}

func (f *fakeElection) History(context.Context) ([]domain.ElectionStatus, error) { return nil, nil }

func openElection() *fakeElection {
	return &fakeElection{status: domain.ElectionStatus{
		Status:   domain.PhaseActive,
		Settings: domain.DefaultElectionSettings(),
	}}
}
