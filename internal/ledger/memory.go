package ledger

import (
    "context"
    "sort"
    "sync"
    "time"
)

// Memory is an in-process Ledger keeping one table per showtime, each
// guarded by its own mutex so concurrent requests for different
// showtimes never contend.  The outer lock protects only the table map
// and is never held across topology lookups or while a table lock is
// taken for mutation.
type Memory struct {
    topo TopologySource

    // Now is the clock used for expiry checks.  Tests override it to
    // drive TTL scenarios deterministically.
    Now func() time.Time

    mu     sync.RWMutex
    tables map[uint64]*seatTable
}

type seatTable struct {
    mu    sync.Mutex
    seats map[uint64]State
}

// NewMemory returns an empty in-memory ledger backed by the given
// topology source.
func NewMemory(topo TopologySource) *Memory {
    return &Memory{
        topo:   topo,
        Now:    time.Now,
        tables: make(map[uint64]*seatTable),
    }
}

// table returns the showtime's seat table, materializing it on first
// use.  The topology lookup happens outside both locks; if two callers
// race the first materialization, the losing table is discarded.
func (m *Memory) table(ctx context.Context, showtimeID uint64) (*seatTable, error) {
    m.mu.RLock()
    t, ok := m.tables[showtimeID]
    m.mu.RUnlock()
    if ok {
        return t, nil
    }

    seatIDs, err := m.topo.SeatIDsForShowtime(ctx, showtimeID)
    if err != nil {
        return nil, err
    }
    fresh := &seatTable{seats: make(map[uint64]State, len(seatIDs))}
    for _, id := range seatIDs {
        fresh.seats[id] = Available()
    }

    m.mu.Lock()
    defer m.mu.Unlock()
    if t, ok = m.tables[showtimeID]; ok {
        return t, nil
    }
    m.tables[showtimeID] = fresh
    return fresh, nil
}

// effective applies lazy expiry: a lock past its expiry is AVAILABLE
// for every purpose, regardless of whether it has been swept yet.
func effective(s State, now time.Time) State {
    if s.Status == StatusLocked && !s.ExpiresAt.After(now) {
        return Available()
    }
    return s
}

func (m *Memory) Read(ctx context.Context, showtimeID uint64, seatIDs []uint64) ([]Entry, error) {
    t, err := m.table(ctx, showtimeID)
    if err != nil {
        return nil, err
    }
    now := m.Now()

    t.mu.Lock()
    defer t.mu.Unlock()
    entries := make([]Entry, 0, len(seatIDs))
    for _, id := range seatIDs {
        s, ok := t.seats[id]
        if !ok {
            return nil, ErrSeatNotFound
        }
        entries = append(entries, Entry{ShowtimeID: showtimeID, SeatID: id, State: effective(s, now)})
    }
    return entries, nil
}

func (m *Memory) ReadAll(ctx context.Context, showtimeID uint64) ([]Entry, error) {
    t, err := m.table(ctx, showtimeID)
    if err != nil {
        return nil, err
    }
    now := m.Now()

    t.mu.Lock()
    defer t.mu.Unlock()
    entries := make([]Entry, 0, len(t.seats))
    for id, s := range t.seats {
        entries = append(entries, Entry{ShowtimeID: showtimeID, SeatID: id, State: effective(s, now)})
    }
    sort.Slice(entries, func(i, j int) bool { return entries[i].SeatID < entries[j].SeatID })
    return entries, nil
}

func (m *Memory) CompareAndSet(ctx context.Context, showtimeID, seatID uint64, expected Expected, next State) error {
    t, err := m.table(ctx, showtimeID)
    if err != nil {
        return err
    }
    now := m.Now()

    t.mu.Lock()
    defer t.mu.Unlock()
    cur, ok := t.seats[seatID]
    if !ok {
        return ErrSeatNotFound
    }
    eff := effective(cur, now)

    switch expected.Status {
    case StatusAvailable:
        if eff.Status != StatusAvailable {
            return ErrConflict
        }
    case StatusLocked:
        if eff.Status != StatusLocked || eff.Holder != expected.Holder {
            return ErrConflict
        }
    case StatusBooked:
        if eff.Status != StatusBooked || eff.BookingRef != expected.BookingRef {
            return ErrConflict
        }
    default:
        return ErrConflict
    }

    t.seats[seatID] = next
    return nil
}

func (m *Memory) ListExpired(ctx context.Context, now time.Time) ([]Key, error) {
    m.mu.RLock()
    tables := make(map[uint64]*seatTable, len(m.tables))
    for id, t := range m.tables {
        tables[id] = t
    }
    m.mu.RUnlock()

    var keys []Key
    for showtimeID, t := range tables {
        t.mu.Lock()
        for seatID, s := range t.seats {
            if s.Status == StatusLocked && !s.ExpiresAt.After(now) {
                keys = append(keys, Key{ShowtimeID: showtimeID, SeatID: seatID})
            }
        }
        t.mu.Unlock()
    }
    return keys, nil
}
