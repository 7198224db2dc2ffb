package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/usuarios-api/internal/domain/entity"
	"github.com/jhoicas/usuarios-api/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepository)(nil)

// AccountRepository decorador de lectura sobre otro AccountRepository.
// Cachea FindByID y FindByIdentityRef; Save y DeleteByID invalidan las entradas de la cuenta.
// Las ausencias no se cachean.
//
// epoch avanza con cada escritura: una lectura iniciada antes de una escritura
// no guarda su resultado ni comparte vuelo con lecturas posteriores.
type AccountRepository struct {
	next  repository.AccountRepository
	c     *gocache.Cache
	sf    singleflight.Group
	mu    sync.Mutex
	epoch uint64
}

// NewAccountRepository envuelve next con una caché en memoria de TTL dado.
func NewAccountRepository(next repository.AccountRepository, ttl time.Duration) *AccountRepository {
	return &AccountRepository{next: next, c: gocache.New(ttl, time.Minute)}
}

func idKey(id int64) string     { return "id:" + strconv.FormatInt(id, 10) }
func refKey(ref string) string { return "ref:" + ref }

// FindByID lee de caché o del repositorio subyacente.
func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	return r.load(idKey(id), func() (*entity.Account, error) { return r.next.FindByID(ctx, id) })
}

// FindByIdentityRef lee de caché o del repositorio subyacente.
func (r *AccountRepository) FindByIdentityRef(ctx context.Context, identityRef string) (*entity.Account, error) {
	return r.load(refKey(identityRef), func() (*entity.Account, error) { return r.next.FindByIdentityRef(ctx, identityRef) })
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.next.ExistsByEmail(ctx, email)
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]*entity.Account, error) {
	return r.next.FindAll(ctx)
}

// Save delega y, haya error o no, invalida las entradas de la cuenta.
func (r *AccountRepository) Save(ctx context.Context, a *entity.Account) error {
	err := r.next.Save(ctx, a)
	if a.ID != 0 {
		r.forget(a.ID)
	}
	if a.IdentityRef != "" {
		r.c.Delete(refKey(a.IdentityRef))
	}
	return err
}

// DeleteByID delega e invalida.
func (r *AccountRepository) DeleteByID(ctx context.Context, id int64) error {
	err := r.next.DeleteByID(ctx, id)
	r.forget(id)
	return err
}

// Direct devuelve una vista sin caché de lectura cuyas escrituras siguen invalidando.
// Los flujos que deciden a partir de la fila (actualizar, eliminar) leen por aquí.
func (r *AccountRepository) Direct() repository.AccountRepository {
	return direct{r}
}

// forget elimina la entrada por ID y cualquier entrada por identityRef de la misma cuenta.
func (r *AccountRepository) forget(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.c.Delete(idKey(id))
	for k, item := range r.c.Items() {
		if a, ok := item.Object.(*entity.Account); ok && a.ID == id {
			r.c.Delete(k)
		}
	}
}

func (r *AccountRepository) currentEpoch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

// store guarda a bajo key solo si no hubo escrituras desde epoch.
func (r *AccountRepository) store(key string, epoch uint64, a *entity.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch == epoch {
		r.c.SetDefault(key, clone(a))
	}
}

func (r *AccountRepository) load(key string, fetch func() (*entity.Account, error)) (*entity.Account, error) {
	if v, ok := r.c.Get(key); ok {
		return clone(v.(*entity.Account)), nil
	}
	epoch := r.currentEpoch()
	flight := key + "@" + strconv.FormatUint(epoch, 10)
	v, err, _ := r.sf.Do(flight, func() (any, error) {
		a, err := fetch()
		if err != nil || a == nil {
			return a, err
		}
		r.store(key, epoch, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	a, _ := v.(*entity.Account)
	return clone(a), nil
}

// direct lee siempre del repositorio subyacente.
type direct struct{ *AccountRepository }

func (d direct) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	return d.next.FindByID(ctx, id)
}

func (d direct) FindByIdentityRef(ctx context.Context, identityRef string) (*entity.Account, error) {
	return d.next.FindByIdentityRef(ctx, identityRef)
}

// clone evita que los llamadores modifiquen la copia cacheada.
func clone(a *entity.Account) *entity.Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Roles = append([]string(nil), a.Roles...)
	if a.ProfileImageRef != nil {
		ref := *a.ProfileImageRef
		c.ProfileImageRef = &ref
	}
	return &c
}
