package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*customerRepo)(nil)

type customerRepo struct{ c *conn }

func (r *customerRepo) Create(_ context.Context, cu *entity.Customer) error {
	defer r.c.lock()()
	r.c.state().customers[cu.ID] = *cu
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	defer r.c.lock()()
	cu, ok := r.c.state().customers[id]
	if !ok {
		return nil, nil
	}
	return &cu, nil
}

func (r *customerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Customer, error) {
	return r.GetByID(ctx, id)
}

func (r *customerRepo) ExistsEmail(_ context.Context, email, excludeID string) (bool, error) {
	defer r.c.lock()()
	for id, cu := range r.c.state().customers {
		if cu.Email != "" && strings.EqualFold(cu.Email, email) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *customerRepo) Update(_ context.Context, cu *entity.Customer) error {
	defer r.c.lock()()
	st := r.c.state()
	if cur, ok := st.customers[cu.ID]; ok {
		next := *cu
		next.Balance, next.CreatedAt = cur.Balance, cur.CreatedAt
		st.customers[cu.ID] = next
	}
	return nil
}

func (r *customerRepo) UpdateBalance(_ context.Context, id string, balance decimal.Decimal) error {
	defer r.c.lock()()
	if err := r.c.fail("Customers.UpdateBalance"); err != nil {
		return err
	}
	st := r.c.state()
	if cu, ok := st.customers[id]; ok {
		cu.Balance = balance
		st.customers[id] = cu
	}
	return nil
}

func (r *customerRepo) Deactivate(_ context.Context, id string) error {
	defer r.c.lock()()
	st := r.c.state()
	if cu, ok := st.customers[id]; ok {
		cu.Active = false
		st.customers[id] = cu
	}
	return nil
}

func (r *customerRepo) List(_ context.Context, f repository.CustomerFilter) ([]*entity.Customer, int, error) {
	defer r.c.lock()()
	var out []*entity.Customer
	for _, cu := range r.c.state().customers {
		switch {
		case f.Active != nil && cu.Active != *f.Active,
			f.WithDebt && !cu.Balance.IsPositive(),
			f.Search != "" && !containsFold(cu.Name, f.Search) && !containsFold(cu.Email, f.Search) &&
				!containsFold(cu.Phone, f.Search) && !containsFold(cu.DocumentNumber, f.Search):
			continue
		}
		cu := cu
		out = append(out, &cu)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return pageOf(out, f.Page), len(out), nil
}

func (r *customerRepo) Stats(_ context.Context) (*repository.CustomerStats, error) {
	defer r.c.lock()()
	s := &repository.CustomerStats{}
	for _, cu := range r.c.state().customers {
		s.TotalCustomers++
		if cu.Active {
			s.ActiveCustomers++
		}
		if cu.Balance.IsPositive() {
			s.WithDebt++
			s.TotalDebt = s.TotalDebt.Add(cu.Balance)
		}
	}
	return s, nil
}

var _ repository.AccountTransactionRepository = (*accountRepo)(nil)

type accountRepo struct{ c *conn }

func (r *accountRepo) Create(_ context.Context, tx *entity.AccountTransaction) error {
	defer r.c.lock()()
	if err := r.c.fail("Accounts.Create"); err != nil {
		return err
	}
	st := r.c.state()
	st.accountTxs = append(st.accountTxs, *tx)
	return nil
}

func (r *accountRepo) List(_ context.Context, f repository.AccountTransactionFilter) ([]*entity.AccountTransaction, int, error) {
	defer r.c.lock()()
	st := r.c.state()
	var out []*entity.AccountTransaction
	for _, tx := range st.accountTxs {
		switch {
		case f.CustomerID != "" && tx.CustomerID != f.CustomerID,
			f.Type != "" && tx.Type != f.Type,
			!inDateRange(tx.CreatedAt, f.StartDate, f.EndDate):
			continue
		}
		tx := tx
		if tx.UserID != nil {
			tx.UserName = st.users[*tx.UserID].Name
		}
		out = append(out, &tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return pageOf(out, f.Page), len(out), nil
}

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct{ c *conn }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	defer r.c.lock()()
	st := r.c.state()
	for _, o := range st.users {
		if strings.EqualFold(o.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	st.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.c.lock()()
	u, ok := r.c.state().users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.c.lock()()
	for _, u := range r.c.state().users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	defer r.c.lock()()
	st := r.c.state()
	if cur, ok := st.users[u.ID]; ok {
		cur.Name, cur.Phone, cur.Role, cur.Active, cur.UpdatedAt = u.Name, u.Phone, u.Role, u.Active, u.UpdatedAt
		st.users[u.ID] = cur
	}
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	defer r.c.lock()()
	st := r.c.state()
	if u, ok := st.users[id]; ok {
		u.PasswordHash = passwordHash
		st.users[id] = u
	}
	return nil
}

func (r *userRepo) List(_ context.Context) ([]*entity.User, error) {
	defer r.c.lock()()
	out := make([]*entity.User, 0, len(r.c.state().users))
	for _, u := range r.c.state().users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
