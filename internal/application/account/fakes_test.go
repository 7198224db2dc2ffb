package account_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/usuarios-api/internal/application/account"
	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes programables: cada uno puede fallar en cualquier operación.
// ──────────────────────────────────────────────────────────────────────────────

var errBoom = errors.New("boom")

type fakeIdentity struct {
	mu        sync.Mutex
	next      int
	claims    map[string]string // identityRef → role
	calls     []string
	failOn    map[string]error // "create" | "claim" | "delete"
	failClaim map[string]error // rol → error (para fallar solo al restaurar/asignar un rol concreto)
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{claims: map[string]string{}, failOn: map[string]error{}, failClaim: map[string]error{}}
}

func (f *fakeIdentity) CreateIdentity(_ context.Context, email, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create:"+email)
	if err := f.failOn["create"]; err != nil {
		return "", err
	}
	f.next++
	ref := fmt.Sprintf("uid-%d", f.next)
	f.claims[ref] = ""
	return ref, nil
}

func (f *fakeIdentity) SetRoleClaim(_ context.Context, ref, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "claim:"+ref+"="+role)
	if err := f.failOn["claim"]; err != nil {
		return err
	}
	if err := f.failClaim[role]; err != nil {
		return err
	}
	if _, ok := f.claims[ref]; !ok {
		return fmt.Errorf("%w: USER_NOT_FOUND", domain.ErrClaimAssignment)
	}
	f.claims[ref] = role
	return nil
}

func (f *fakeIdentity) DeleteIdentity(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+ref)
	if err := f.failOn["delete"]; err != nil {
		return err
	}
	delete(f.claims, ref)
	return nil
}

func (f *fakeIdentity) exists(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.claims[ref]
	return ok
}

func (f *fakeIdentity) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.claims)
}

func (f *fakeIdentity) callsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

type fakeImages struct {
	mu      sync.Mutex
	next    int
	objects map[string][]byte
	calls   []string
	failOn  map[string]error // "upload" | "delete"
}

func newFakeImages() *fakeImages {
	return &fakeImages{objects: map[string][]byte{}, failOn: map[string]error{}}
}

func (f *fakeImages) UploadImage(_ context.Context, bucket string, payload []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "upload:"+bucket)
	if err := f.failOn["upload"]; err != nil {
		return "", err
	}
	f.next++
	url := fmt.Sprintf("https://img.test/%s/profiles/%d.jpg", bucket, f.next)
	f.objects[url] = slices.Clone(payload)
	return url, nil
}

func (f *fakeImages) DeleteImage(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+url)
	if err := f.failOn["delete"]; err != nil {
		return err
	}
	delete(f.objects, url)
	return nil
}

func (f *fakeImages) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[url]
	return ok
}

func (f *fakeImages) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakeRepo emula la tabla users incluida la restricción UNIQUE(email).
type fakeRepo struct {
	mu         sync.Mutex
	nextID     int64
	rows       map[int64]entity.Account
	failSave   error
	failDelete error
	// existsLies hace que ExistsByEmail devuelva false siempre (carrera de altas concurrentes).
	existsLies bool
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: map[int64]entity.Account{}} }

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return clone(a), nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindByIdentityRef(_ context.Context, ref string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.IdentityRef == ref {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.existsLies {
		return false, nil
	}
	a, err := r.FindByEmail(ctx, email)
	return a != nil, err
}

func (r *fakeRepo) Save(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave != nil {
		return r.failSave
	}
	if a.ID == 0 {
		for _, row := range r.rows {
			if row.Email == a.Email {
				return fmt.Errorf("%w: %w", domain.ErrPersistence, domain.ErrDuplicateEmail)
			}
		}
		r.nextID++
		a.ID = r.nextID
		r.rows[a.ID] = *clone(*a)
		return nil
	}
	row, ok := r.rows[a.ID]
	if !ok {
		return fmt.Errorf("%w: cuenta %d", domain.ErrNotFound, a.ID)
	}
	// Igual que el UPDATE de Postgres: email, identity_ref y hash no se tocan.
	updated := *clone(*a)
	updated.Email = row.Email
	updated.IdentityRef = row.IdentityRef
	updated.CredentialHash = row.CredentialHash
	updated.CreatedAt = row.CreatedAt
	r.rows[a.ID] = updated
	return nil
}

func (r *fakeRepo) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete != nil {
		return r.failDelete
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) FindAll(_ context.Context) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Account, 0, len(r.rows))
	for id := int64(1); id <= r.nextID; id++ {
		if a, ok := r.rows[id]; ok {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func clone(a entity.Account) *entity.Account {
	a.Roles = slices.Clone(a.Roles)
	if a.ProfileImageRef != nil {
		url := *a.ProfileImageRef
		a.ProfileImageRef = &url
	}
	return &a
}

type fakeHasher struct{ err error }

func (h fakeHasher) Hash(plain string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hash:" + plain, nil
}

type recordedCompensation struct {
	op, step string
	err      error
}

type fakeRecorder struct {
	mu            sync.Mutex
	outcomes      map[string][]string
	compensations []recordedCompensation
}

func newFakeRecorder() *fakeRecorder { return &fakeRecorder{outcomes: map[string][]string{}} }

func (r *fakeRecorder) ObserveWorkflow(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[op] = append(r.outcomes[op], outcome)
}

func (r *fakeRecorder) ObserveCompensation(op, step string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compensations = append(r.compensations, recordedCompensation{op: op, step: step, err: err})
}

func (r *fakeRecorder) compensationSteps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.compensations {
		out = append(out, c.step)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Harness
// ──────────────────────────────────────────────────────────────────────────────

const testBucket = "profile-images"

type harness struct {
	orch     *account.Orchestrator
	identity *fakeIdentity
	images   *fakeImages
	repo     *fakeRepo
	metrics  *fakeRecorder
}

func newHarness() *harness {
	h := &harness{
		identity: newFakeIdentity(),
		images:   newFakeImages(),
		repo:     newFakeRepo(),
		metrics:  newFakeRecorder(),
	}
	h.orch = account.NewOrchestrator(account.Deps{
		Repo:     h.repo,
		Identity: h.identity,
		Images:   h.images,
		Hasher:   fakeHasher{},
		Metrics:  h.metrics,
	}, account.Config{ImageBucket: testBucket})
	return h
}

func validCreate(email string) account.CreateInput {
	return account.CreateInput{
		Name:           "Ana",
		LastName:       "Quispe",
		DocumentType:   "DNI",
		DocumentNumber: "45678912",
		CellPhone:      "987654321",
		Email:          email,
		Credential:     "secret",
	}
}

func newOrchestratorWithHasher(h *harness, hasher fakeHasher) *account.Orchestrator {
	return account.NewOrchestrator(account.Deps{
		Repo:     h.repo,
		Identity: h.identity,
		Images:   h.images,
		Hasher:   hasher,
		Metrics:  h.metrics,
	}, account.Config{ImageBucket: testBucket})
}
