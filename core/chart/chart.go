// Package chart keeps the attendance and performance series drawn by the dashboard.
package chart

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Series names.
const (
	Attendance  = "attendance"
	Performance = "performance"
)

var ErrUnknownSeries = errors.New("unknown chart series")

type Point struct {
	X    *float64 `json:"x" validate:"required"`
	Y    *float64 `json:"y" validate:"required"`
	Date string   `json:"date" validate:"required"`
}

// Store holds one series per name. Saving a series replaces it as a whole.
type Store struct {
	series map[string]*atomic.Pointer[[]Point]
}

func NewStore() *Store {
	return &Store{
		series: map[string]*atomic.Pointer[[]Point]{
			Attendance:  new(atomic.Pointer[[]Point]),
			Performance: new(atomic.Pointer[[]Point]),
		},
	}
}

func (s *Store) slot(name string) (*atomic.Pointer[[]Point], error) {
	slot, ok := s.series[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSeries, "%q", name)
	}
	return slot, nil
}

func (s *Store) Save(name string, points []Point) error {
	slot, err := s.slot(name)
	if err != nil {
		return err
	}
	cp := append(make([]Point, 0, len(points)), points...)
	slot.Store(&cp)
	return nil
}

// Get returns the series called name; empty when it was never saved.
func (s *Store) Get(name string) ([]Point, error) {
	slot, err := s.slot(name)
	if err != nil {
		return nil, err
	}
	points := slot.Load()
	if points == nil {
		return []Point{}, nil
	}
	return append(make([]Point, 0, len(*points)), *points...), nil
}
