// Package memory is an in-process core.Store.
//
// Published state is immutable. Every write runs as a transaction under a
// single writer lock: it edits a private copy and publishes the copy only
// when the transaction succeeds, so readers never observe a partial batch.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/indicators/internal/core"
)

type state struct {
	lastIndicatorID   int64
	lastQuarantinedID int64
	indicators        []core.Indicator
	quarantined       []core.QuarantinedIndicator
}

func (st *state) clone() *state {
	c := *st
	c.indicators = append([]core.Indicator(nil), st.indicators...)
	c.quarantined = append([]core.QuarantinedIndicator(nil), st.quarantined...)
	return &c
}

// Store keeps both collections in memory. It is safe for concurrent use.
type Store struct {
	writer sync.Mutex

	mu  sync.RWMutex
	cur *state
}

// New returns an empty store.
func New() *Store {
	return &Store{cur: &state{}}
}

var _ core.Store = (*Store)(nil)

func (s *Store) current() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// InTx runs fn against a private copy and publishes it if fn succeeds.
// Transactions are serialized.
func (s *Store) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writer.Lock()
	defer s.writer.Unlock()

	tx := &txStore{st: s.current().clone()}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.cur = tx.st
	s.mu.Unlock()
	return nil
}

func (s *Store) write(ctx context.Context, fn func(tx core.Store) error) error {
	return s.InTx(ctx, fn)
}

// SaveIndicator implements core.Store.
func (s *Store) SaveIndicator(ctx context.Context, ind *core.Indicator) error {
	return s.write(ctx, func(tx core.Store) error { return tx.SaveIndicator(ctx, ind) })
}

// SaveQuarantined implements core.Store.
func (s *Store) SaveQuarantined(ctx context.Context, q *core.QuarantinedIndicator) error {
	return s.write(ctx, func(tx core.Store) error { return tx.SaveQuarantined(ctx, q) })
}

// UpdateIndicator implements core.Store.
func (s *Store) UpdateIndicator(ctx context.Context, ind core.Indicator) error {
	return s.write(ctx, func(tx core.Store) error { return tx.UpdateIndicator(ctx, ind) })
}

// UpdateQuarantined implements core.Store.
func (s *Store) UpdateQuarantined(ctx context.Context, q core.QuarantinedIndicator) error {
	return s.write(ctx, func(tx core.Store) error { return tx.UpdateQuarantined(ctx, q) })
}

// DeleteQuarantined implements core.Store.
func (s *Store) DeleteQuarantined(ctx context.Context, id int64) error {
	return s.write(ctx, func(tx core.Store) error { return tx.DeleteQuarantined(ctx, id) })
}

// DeleteAllIndicators implements core.Store.
func (s *Store) DeleteAllIndicators(ctx context.Context) (int64, error) {
	var n int64
	err := s.write(ctx, func(tx core.Store) (err error) {
		n, err = tx.DeleteAllIndicators(ctx)
		return err
	})
	return n, err
}

// DeleteAllQuarantined implements core.Store.
func (s *Store) DeleteAllQuarantined(ctx context.Context) (int64, error) {
	var n int64
	err := s.write(ctx, func(tx core.Store) (err error) {
		n, err = tx.DeleteAllQuarantined(ctx)
		return err
	})
	return n, err
}

// GetIndicator implements core.Store.
func (s *Store) GetIndicator(ctx context.Context, id int64) (core.Indicator, error) {
	return (&txStore{st: s.current()}).GetIndicator(ctx, id)
}

// GetQuarantined implements core.Store.
func (s *Store) GetQuarantined(ctx context.Context, id int64) (core.QuarantinedIndicator, error) {
	return (&txStore{st: s.current()}).GetQuarantined(ctx, id)
}

// ListIndicators implements core.Store.
func (s *Store) ListIndicators(ctx context.Context) ([]core.Indicator, error) {
	return (&txStore{st: s.current()}).ListIndicators(ctx)
}

// ListQuarantined implements core.Store.
func (s *Store) ListQuarantined(ctx context.Context) ([]core.QuarantinedIndicator, error) {
	return (&txStore{st: s.current()}).ListQuarantined(ctx)
}

// txStore operates directly on one state value. Read-only use on published
// state is safe because it never mutates through read methods.
type txStore struct {
	st *state
}

func (t *txStore) InTx(_ context.Context, fn func(tx core.Store) error) error {
	return fn(t)
}

func (t *txStore) SaveIndicator(_ context.Context, ind *core.Indicator) error {
	t.st.lastIndicatorID++
	ind.ID = t.st.lastIndicatorID
	if ind.Status == "" {
		ind.Status = core.StatusValid
	}
	t.st.indicators = append(t.st.indicators, *ind)
	return nil
}

func (t *txStore) SaveQuarantined(_ context.Context, q *core.QuarantinedIndicator) error {
	t.st.lastQuarantinedID++
	q.ID = t.st.lastQuarantinedID
	t.st.quarantined = append(t.st.quarantined, *q)
	return nil
}

func (t *txStore) indexIndicator(id int64) int {
	for i := range t.st.indicators {
		if t.st.indicators[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *txStore) indexQuarantined(id int64) int {
	for i := range t.st.quarantined {
		if t.st.quarantined[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *txStore) GetIndicator(_ context.Context, id int64) (core.Indicator, error) {
	i := t.indexIndicator(id)
	if i < 0 {
		return core.Indicator{}, fmt.Errorf("indicator %d: %w", id, core.ErrNotFound)
	}
	return t.st.indicators[i], nil
}

func (t *txStore) GetQuarantined(_ context.Context, id int64) (core.QuarantinedIndicator, error) {
	i := t.indexQuarantined(id)
	if i < 0 {
		return core.QuarantinedIndicator{}, fmt.Errorf("quarantined indicator %d: %w", id, core.ErrNotFound)
	}
	return t.st.quarantined[i], nil
}

func (t *txStore) UpdateIndicator(_ context.Context, ind core.Indicator) error {
	i := t.indexIndicator(ind.ID)
	if i < 0 {
		return fmt.Errorf("indicator %d: %w", ind.ID, core.ErrNotFound)
	}
	t.st.indicators[i] = ind
	return nil
}

func (t *txStore) UpdateQuarantined(_ context.Context, q core.QuarantinedIndicator) error {
	i := t.indexQuarantined(q.ID)
	if i < 0 {
		return fmt.Errorf("quarantined indicator %d: %w", q.ID, core.ErrNotFound)
	}
	t.st.quarantined[i] = q
	return nil
}

func (t *txStore) DeleteQuarantined(_ context.Context, id int64) error {
	i := t.indexQuarantined(id)
	if i < 0 {
		return fmt.Errorf("quarantined indicator %d: %w", id, core.ErrNotFound)
	}
	t.st.quarantined = append(t.st.quarantined[:i:i], t.st.quarantined[i+1:]...)
	return nil
}

func (t *txStore) ListIndicators(context.Context) ([]core.Indicator, error) {
	return append([]core.Indicator(nil), t.st.indicators...), nil
}

func (t *txStore) ListQuarantined(context.Context) ([]core.QuarantinedIndicator, error) {
	return append([]core.QuarantinedIndicator(nil), t.st.quarantined...), nil
}

func (t *txStore) DeleteAllIndicators(context.Context) (int64, error) {
	n := int64(len(t.st.indicators))
	t.st.indicators = nil
	return n, nil
}

func (t *txStore) DeleteAllQuarantined(context.Context) (int64, error) {
	n := int64(len(t.st.quarantined))
	t.st.quarantined = nil
	return n, nil
}
