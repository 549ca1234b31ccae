package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

func (st *state) itemsOf(items []entity.LineItem, parentID string) []entity.LineItem {
	out := make([]entity.LineItem, 0)
	for _, it := range items {
		if it.ParentID != parentID {
			continue
		}
		if p, ok := st.products[it.ProductID]; ok {
			it.ProductName, it.ProductBarcode, it.ProductImage, it.ProductUnitType = p.Name, p.Barcode, p.Image, p.UnitType
		}
		out = append(out, it)
	}
	return out
}

func paymentsOf(all map[string][]entity.Tender, ids []string) map[string][]entity.Tender {
	out := make(map[string][]entity.Tender, len(ids))
	for _, id := range ids {
		if ps, ok := all[id]; ok {
			out[id] = append([]entity.Tender(nil), ps...)
		}
	}
	return out
}

var _ repository.SaleRepository = (*saleRepo)(nil)

type saleRepo struct{ c *conn }

func (r *saleRepo) enrich(s entity.Sale) *entity.Sale {
	st := r.c.state()
	if s.CustomerID != nil {
		s.CustomerName = st.customers[*s.CustomerID].Name
	}
	s.UserName = st.users[s.UserID].Name
	s.ItemsCount = len(st.itemsOf(st.saleItems, s.ID))
	s.Items, s.Payments = nil, nil
	return &s
}

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	defer r.c.lock()()
	if err := r.c.fail("Sales.Create"); err != nil {
		return err
	}
	r.c.state().sales[s.ID] = *s
	return nil
}

func (r *saleRepo) CreateItem(_ context.Context, it *entity.LineItem) error {
	defer r.c.lock()()
	if err := r.c.fail("Sales.CreateItem"); err != nil {
		return err
	}
	st := r.c.state()
	st.saleItems = append(st.saleItems, *it)
	return nil
}

func (r *saleRepo) CreatePayment(_ context.Context, saleID string, t *entity.Tender) error {
	defer r.c.lock()()
	if err := r.c.fail("Sales.CreatePayment"); err != nil {
		return err
	}
	st := r.c.state()
	st.salePayments[saleID] = append(st.salePayments[saleID], *t)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	defer r.c.lock()()
	s, ok := r.c.state().sales[id]
	if !ok {
		return nil, nil
	}
	return r.enrich(s), nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) ListItems(_ context.Context, saleID string) ([]entity.LineItem, error) {
	defer r.c.lock()()
	st := r.c.state()
	return st.itemsOf(st.saleItems, saleID), nil
}

func (r *saleRepo) ListPayments(_ context.Context, saleIDs ...string) (map[string][]entity.Tender, error) {
	defer r.c.lock()()
	return paymentsOf(r.c.state().salePayments, saleIDs), nil
}

func (r *saleRepo) Cancel(_ context.Context, id, reason string, at time.Time) error {
	defer r.c.lock()()
	if err := r.c.fail("Sales.Cancel"); err != nil {
		return err
	}
	st := r.c.state()
	if s, ok := st.sales[id]; ok {
		s.Status, s.CancelReason, s.CancelledAt, s.UpdatedAt = entity.SaleStatusCancelled, reason, &at, at
		st.sales[id] = s
	}
	return nil
}

func (r *saleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	defer r.c.lock()()
	var out []*entity.Sale
	for _, s := range r.c.state().sales {
		e := r.enrich(s)
		switch {
		case !inDateRange(s.CreatedAt, f.StartDate, f.EndDate),
			f.Status != "" && s.Status != f.Status,
			f.CustomerID != "" && (s.CustomerID == nil || *s.CustomerID != f.CustomerID),
			f.UserID != "" && s.UserID != f.UserID,
			f.PaymentMethod != "" && s.PaymentMethod != f.PaymentMethod,
			f.Search != "" && !containsFold(e.CustomerName, f.Search) && !containsFold(e.UserName, f.Search):
			continue
		}
		out = append(out, e)
	}
	sortNewestFirst(out, func(s *entity.Sale) (time.Time, string) { return s.CreatedAt, s.ID })
	return pageOf(out, f.Page), len(out), nil
}

func sortNewestFirst[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

func (r *saleRepo) completedIn(from, to time.Time) []entity.Sale {
	var out []entity.Sale
	for _, s := range r.c.state().sales {
		if s.Status == entity.SaleStatusCompleted && !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			out = append(out, s)
		}
	}
	return out
}

func (r *saleRepo) Summary(_ context.Context, from, to time.Time) (*repository.SalesSummary, error) {
	defer r.c.lock()()
	st := r.c.state()
	sum := &repository.SalesSummary{}
	for _, s := range st.sales {
		if s.CreatedAt.Before(from) || !s.CreatedAt.Before(to) {
			continue
		}
		sum.TotalSales++
		switch s.Status {
		case entity.SaleStatusCompleted:
			sum.CompletedSales++
			sum.Revenue = sum.Revenue.Add(s.Total)
			for _, it := range st.itemsOf(st.saleItems, s.ID) {
				sum.ItemsSold = sum.ItemsSold.Add(it.Quantity)
			}
		case entity.SaleStatusCancelled:
			sum.CancelledSales++
		}
	}
	if sum.CompletedSales > 0 {
		sum.AverageTicket = sum.Revenue.Div(decimal.NewFromInt(int64(sum.CompletedSales))).Round(2)
	}
	return sum, nil
}

func (r *saleRepo) methodTotals(sales []entity.Sale) []repository.MethodTotal {
	agg := map[string]*repository.MethodTotal{}
	for _, s := range sales {
		seen := map[string]bool{}
		for _, t := range r.c.state().salePayments[s.ID] {
			m, ok := agg[t.Method]
			if !ok {
				m = &repository.MethodTotal{Method: t.Method}
				agg[t.Method] = m
			}
			if !seen[t.Method] {
				m.Count++
				seen[t.Method] = true
			}
			m.Amount = m.Amount.Add(t.Amount)
		}
	}
	out := make([]repository.MethodTotal, 0, len(agg))
	for _, m := range agg {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	return out
}

func (r *saleRepo) PaymentTotals(_ context.Context, from, to time.Time) ([]repository.MethodTotal, error) {
	defer r.c.lock()()
	return r.methodTotals(r.completedIn(from, to)), nil
}

func (r *saleRepo) PaymentTotalsBySession(_ context.Context, sessionID string) ([]repository.MethodTotal, error) {
	defer r.c.lock()()
	var sales []entity.Sale
	for _, s := range r.c.state().sales {
		if s.Status == entity.SaleStatusCompleted && s.CashSessionID != nil && *s.CashSessionID == sessionID {
			sales = append(sales, s)
		}
	}
	return r.methodTotals(sales), nil
}

func (r *saleRepo) HourlyTotals(_ context.Context, from, to time.Time) ([]repository.HourlyTotal, error) {
	defer r.c.lock()()
	agg := map[int]*repository.HourlyTotal{}
	for _, s := range r.completedIn(from, to) {
		h := s.CreatedAt.Hour()
		ht, ok := agg[h]
		if !ok {
			ht = &repository.HourlyTotal{Hour: h}
			agg[h] = ht
		}
		ht.Count++
		ht.Revenue = ht.Revenue.Add(s.Total)
	}
	out := make([]repository.HourlyTotal, 0, len(agg))
	for _, ht := range agg {
		out = append(out, *ht)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

func (r *saleRepo) TopProducts(_ context.Context, from, to time.Time, limit int) ([]repository.ProductSales, error) {
	defer r.c.lock()()
	st := r.c.state()
	agg := map[string]*repository.ProductSales{}
	for _, s := range r.completedIn(from, to) {
		for _, it := range st.itemsOf(st.saleItems, s.ID) {
			ps, ok := agg[it.ProductID]
			if !ok {
				ps = &repository.ProductSales{ProductID: it.ProductID, Name: it.ProductName, UnitType: it.ProductUnitType}
				agg[it.ProductID] = ps
			}
			ps.Quantity = ps.Quantity.Add(it.Quantity)
			ps.Revenue = ps.Revenue.Add(it.Subtotal)
		}
	}
	out := make([]repository.ProductSales, 0, len(agg))
	for _, ps := range agg {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ repository.DeliveryRepository = (*deliveryRepo)(nil)

type deliveryRepo struct{ c *conn }

func (r *deliveryRepo) enrich(d entity.Delivery) *entity.Delivery {
	st := r.c.state()
	cu := st.customers[d.CustomerID]
	d.CustomerName, d.CustomerPhone, d.CustomerEmail, d.CustomerAddress = cu.Name, cu.Phone, cu.Email, cu.Address
	u := st.users[d.DriverID]
	d.DriverName, d.DriverEmail, d.DriverPhone = u.Name, u.Email, u.Phone
	items := st.itemsOf(st.deliveryItems, d.ID)
	d.ItemsCount, d.TotalItems = len(items), decimal.Zero
	for _, it := range items {
		d.TotalItems = d.TotalItems.Add(it.Quantity)
	}
	d.Items, d.Payments, d.Locations, d.History = nil, nil, nil, nil
	return &d
}

func (r *deliveryRepo) Create(_ context.Context, d *entity.Delivery) error {
	defer r.c.lock()()
	if err := r.c.fail("Deliveries.Create"); err != nil {
		return err
	}
	r.c.state().deliveries[d.ID] = *d
	return nil
}

func (r *deliveryRepo) CreateItem(_ context.Context, it *entity.LineItem) error {
	defer r.c.lock()()
	if err := r.c.fail("Deliveries.CreateItem"); err != nil {
		return err
	}
	st := r.c.state()
	st.deliveryItems = append(st.deliveryItems, *it)
	return nil
}

func (r *deliveryRepo) CreatePayment(_ context.Context, deliveryID string, t *entity.Tender) error {
	defer r.c.lock()()
	st := r.c.state()
	st.deliveryPayments[deliveryID] = append(st.deliveryPayments[deliveryID], *t)
	return nil
}

func (r *deliveryRepo) GetByID(_ context.Context, id string) (*entity.Delivery, error) {
	defer r.c.lock()()
	d, ok := r.c.state().deliveries[id]
	if !ok {
		return nil, nil
	}
	return r.enrich(d), nil
}

func (r *deliveryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.GetByID(ctx, id)
}

func (r *deliveryRepo) ListItems(_ context.Context, deliveryID string) ([]entity.LineItem, error) {
	defer r.c.lock()()
	st := r.c.state()
	return st.itemsOf(st.deliveryItems, deliveryID), nil
}

func (r *deliveryRepo) ListPayments(_ context.Context, deliveryIDs ...string) (map[string][]entity.Tender, error) {
	defer r.c.lock()()
	return paymentsOf(r.c.state().deliveryPayments, deliveryIDs), nil
}

func (r *deliveryRepo) ListLocations(_ context.Context, deliveryID string) ([]entity.DeliveryLocation, error) {
	defer r.c.lock()()
	out := make([]entity.DeliveryLocation, 0)
	for _, l := range r.c.state().locations {
		if l.DeliveryID == deliveryID {
			out = append(out, l)
		}
	}
	sortNewestFirst(out, func(l entity.DeliveryLocation) (time.Time, string) { return l.CreatedAt, l.ID })
	return out, nil
}

func (r *deliveryRepo) ListHistory(_ context.Context, deliveryID string) ([]entity.DeliveryStatusChange, error) {
	defer r.c.lock()()
	st := r.c.state()
	out := make([]entity.DeliveryStatusChange, 0)
	for _, h := range st.history {
		if h.DeliveryID == deliveryID {
			if h.UserID != nil {
				h.UserName = st.users[*h.UserID].Name
			}
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *deliveryRepo) UpdateStatus(_ context.Context, id, status, notes string, at time.Time) error {
	defer r.c.lock()()
	if err := r.c.fail("Deliveries.UpdateStatus"); err != nil {
		return err
	}
	st := r.c.state()
	d, ok := st.deliveries[id]
	if !ok {
		return nil
	}
	d.Status, d.UpdatedAt = status, at
	switch {
	case notes == "":
	case d.Notes == "":
		d.Notes = notes
	default:
		d.Notes = d.Notes + " - " + notes
	}
	st.deliveries[id] = d
	return nil
}

func (r *deliveryRepo) CreateLocation(_ context.Context, l *entity.DeliveryLocation) error {
	defer r.c.lock()()
	if err := r.c.fail("Deliveries.CreateLocation"); err != nil {
		return err
	}
	st := r.c.state()
	st.locations = append(st.locations, *l)
	return nil
}

func (r *deliveryRepo) CreateHistory(_ context.Context, h *entity.DeliveryStatusChange) error {
	defer r.c.lock()()
	if err := r.c.fail("Deliveries.CreateHistory"); err != nil {
		return err
	}
	st := r.c.state()
	st.history = append(st.history, *h)
	return nil
}

func (r *deliveryRepo) List(_ context.Context, f repository.DeliveryFilter) ([]*entity.Delivery, int, error) {
	defer r.c.lock()()
	var out []*entity.Delivery
	for _, d := range r.c.state().deliveries {
		e := r.enrich(d)
		switch {
		case !inDateRange(d.CreatedAt, f.StartDate, f.EndDate),
			f.Status != "" && d.Status != f.Status,
			f.CustomerID != "" && d.CustomerID != f.CustomerID,
			f.DriverID != "" && d.DriverID != f.DriverID,
			f.Search != "" && !containsFold(d.ID, f.Search) && !containsFold(e.CustomerName, f.Search) &&
				!containsFold(e.DriverName, f.Search):
			continue
		}
		out = append(out, e)
	}
	sortNewestFirst(out, func(d *entity.Delivery) (time.Time, string) { return d.CreatedAt, d.ID })
	return pageOf(out, f.Page), len(out), nil
}

func (r *deliveryRepo) ListByDriver(_ context.Context, driverID, status string) ([]*entity.Delivery, error) {
	defer r.c.lock()()
	var out []*entity.Delivery
	for _, d := range r.c.state().deliveries {
		if d.DriverID != driverID || (status != "" && d.Status != status) {
			continue
		}
		out = append(out, r.enrich(d))
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Status == entity.DeliveryStatusInProgress, out[j].Status == entity.DeliveryStatusInProgress
		if pi != pj {
			return pi
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *deliveryRepo) Stats(_ context.Context, from time.Time) (*repository.DeliveryStats, error) {
	defer r.c.lock()()
	st := r.c.state()
	s := &repository.DeliveryStats{}
	for _, d := range st.deliveries {
		if d.CreatedAt.Before(from) {
			continue
		}
		s.TotalDeliveries++
		switch d.Status {
		case entity.DeliveryStatusPending:
			s.Pending++
		case entity.DeliveryStatusInProgress:
			s.InProgress++
		case entity.DeliveryStatusCompleted:
			s.Completed++
			s.TotalRevenue = s.TotalRevenue.Add(d.Total)
			for _, it := range st.itemsOf(st.deliveryItems, d.ID) {
				s.TotalItemsDelivered = s.TotalItemsDelivered.Add(it.Quantity)
			}
		case entity.DeliveryStatusCancelled:
			s.Cancelled++
		}
	}
	if s.Completed > 0 {
		s.AverageDelivery = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.Completed))).Round(2)
	}
	return s, nil
}

var _ repository.CashRepository = (*cashRepo)(nil)

type cashRepo struct{ c *conn }

func (r *cashRepo) enrich(s entity.CashSession) *entity.CashSession {
	st := r.c.state()
	s.UserName = st.users[s.UserID].Name
	if s.ClosedBy != nil {
		s.ClosedByName = st.users[*s.ClosedBy].Name
	}
	return &s
}

func (r *cashRepo) CreateSession(_ context.Context, s *entity.CashSession) error {
	defer r.c.lock()()
	st := r.c.state()
	for _, o := range st.sessions {
		if o.Status == entity.CashSessionOpen {
			return domain.ErrDuplicate
		}
	}
	st.sessions[s.ID] = *s
	return nil
}

func (r *cashRepo) GetOpen(_ context.Context) (*entity.CashSession, error) {
	defer r.c.lock()()
	for _, s := range r.c.state().sessions {
		if s.Status == entity.CashSessionOpen {
			return r.enrich(s), nil
		}
	}
	return nil, nil
}

func (r *cashRepo) GetOpenForUpdate(ctx context.Context) (*entity.CashSession, error) {
	return r.GetOpen(ctx)
}

func (r *cashRepo) GetOpenForShare(ctx context.Context) (*entity.CashSession, error) {
	return r.GetOpen(ctx)
}

func (r *cashRepo) GetSessionByID(_ context.Context, id string) (*entity.CashSession, error) {
	defer r.c.lock()()
	s, ok := r.c.state().sessions[id]
	if !ok {
		return nil, nil
	}
	return r.enrich(s), nil
}

func (r *cashRepo) CloseSession(_ context.Context, s *entity.CashSession) error {
	defer r.c.lock()()
	if err := r.c.fail("Cash.CloseSession"); err != nil {
		return err
	}
	st := r.c.state()
	cur, ok := st.sessions[s.ID]
	if !ok || cur.Status != entity.CashSessionOpen {
		return nil
	}
	cur.ClosingAmount, cur.ExpectedAmount, cur.Difference = s.ClosingAmount, s.ExpectedAmount, s.Difference
	cur.DeviationPct, cur.DeviationLevel = s.DeviationPct, s.DeviationLevel
	cur.Status, cur.Notes, cur.ClosedAt, cur.ClosedBy = entity.CashSessionClosed, s.Notes, s.ClosedAt, s.ClosedBy
	st.sessions[s.ID] = cur
	return nil
}

func (r *cashRepo) ListSessions(_ context.Context, f repository.CashSessionFilter) ([]*entity.CashSession, int, error) {
	defer r.c.lock()()
	var out []*entity.CashSession
	for _, s := range r.c.state().sessions {
		switch {
		case !inDateRange(s.OpenedAt, f.StartDate, f.EndDate),
			f.UserID != "" && s.UserID != f.UserID,
			f.Status != "" && s.Status != f.Status:
			continue
		}
		out = append(out, r.enrich(s))
	}
	sortNewestFirst(out, func(s *entity.CashSession) (time.Time, string) { return s.OpenedAt, s.ID })
	return pageOf(out, f.Page), len(out), nil
}

func (r *cashRepo) CreateMovement(_ context.Context, m *entity.CashMovement) error {
	defer r.c.lock()()
	if err := r.c.fail("Cash.CreateMovement"); err != nil {
		return err
	}
	st := r.c.state()
	st.cashMovements = append(st.cashMovements, *m)
	return nil
}

func (r *cashRepo) ListMovements(_ context.Context, sessionID string) ([]*entity.CashMovement, error) {
	defer r.c.lock()()
	st := r.c.state()
	out := make([]*entity.CashMovement, 0)
	for _, m := range st.cashMovements {
		if m.SessionID == sessionID {
			m := m
			m.UserName = st.users[m.UserID].Name
			out = append(out, &m)
		}
	}
	sortNewestFirst(out, func(m *entity.CashMovement) (time.Time, string) { return m.CreatedAt, m.ID })
	return out, nil
}

func (r *cashRepo) MovementTotals(_ context.Context, sessionID string) (repository.CashMovementTotals, error) {
	defer r.c.lock()()
	var t repository.CashMovementTotals
	for _, m := range r.c.state().cashMovements {
		if m.SessionID != sessionID {
			continue
		}
		switch m.Type {
		case entity.CashMovementIngreso:
			t.Ingresos = t.Ingresos.Add(m.Amount)
		case entity.CashMovementEgreso:
			t.Egresos = t.Egresos.Sub(m.Amount)
		}
	}
	return t, nil
}

func (r *cashRepo) GetSettings(_ context.Context) (*entity.CashSettings, error) {
	defer r.c.lock()()
	if s := r.c.state().settings; s != nil {
		cp := *s
		return &cp, nil
	}
	d := entity.DefaultCashSettings()
	return &d, nil
}

func (r *cashRepo) SaveSettings(_ context.Context, s *entity.CashSettings) error {
	defer r.c.lock()()
	cp := *s
	r.c.state().settings = &cp
	return nil
}
