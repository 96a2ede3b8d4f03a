package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

var (
	presenceBucket = []byte("presence")
	absenceBucket  = []byte("absences")
	metaBucket     = []byte("meta")

	fingerprintKey = []byte("fingerprint")
)

var errSnapshotLocked = errors.New(
	"is another instance already running? Only one can use the cache at a time",
)

// Snapshot is a BoltDB client persisting the month caches between runs.
type Snapshot struct {
	*bolt.DB
}

// NewSnapshot opens or creates the snapshot database and ensures the
// buckets exist.
func NewSnapshot(dbPath string) (*Snapshot, error) {
	db, err := openSnapshotDB(dbPath)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{presenceBucket, absenceBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Snapshot{db}, nil
}

func openSnapshotDB(dbPath string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		dbPath,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		// The file lock times out when another process holds the
		// database open.
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errSnapshotLocked
		}

		return nil, err
	}

	return db, nil
}

// Validate compares the stored server/user fingerprint against the
// current one and drops all cached months on a mismatch. Cached data is
// only meaningful for the account and server it was fetched from.
func (s *Snapshot) Validate(serverURL, username string) error {
	fingerprint := []byte(fmt.Sprintf("%s|%s", serverURL, username))

	return s.Update(func(tx *bolt.Tx) error {
		stored := tx.Bucket(metaBucket).Get(fingerprintKey)
		if stored == nil || string(stored) == string(fingerprint) {
			return tx.Bucket(metaBucket).Put(fingerprintKey, fingerprint)
		}

		for _, name := range [][]byte{presenceBucket, absenceBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}

			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		return tx.Bucket(metaBucket).Put(fingerprintKey, fingerprint)
	})
}

func (s *Snapshot) SavePresence(rec *models.MonthPresence) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(presenceBucket).Put([]byte(rec.Month.String()), value)
	})
}

func (s *Snapshot) LoadPresence(m timeutil.Month) (*models.MonthPresence, error) {
	var rec *models.MonthPresence

	err := s.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(presenceBucket).Get([]byte(m.String()))
		if len(value) == 0 {
			return nil
		}

		rec = &models.MonthPresence{}

		return json.Unmarshal(value, rec)
	})

	return rec, err
}

func (s *Snapshot) SaveAbsences(rec *models.AbsenceMonth) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(absenceBucket).Put([]byte(rec.Month.String()), value)
	})
}

func (s *Snapshot) LoadAbsences(m timeutil.Month) (*models.AbsenceMonth, error) {
	var rec *models.AbsenceMonth

	err := s.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(absenceBucket).Get([]byte(m.String()))
		if len(value) == 0 {
			return nil
		}

		rec = &models.AbsenceMonth{}

		return json.Unmarshal(value, rec)
	})

	return rec, err
}

// Stats counts the persisted month records per bucket.
func (s *Snapshot) Stats() (presence, absences int, err error) {
	err = s.View(func(tx *bolt.Tx) error {
		presence = tx.Bucket(presenceBucket).Stats().KeyN
		absences = tx.Bucket(absenceBucket).Stats().KeyN

		return nil
	})

	return presence, absences, err
}

// SaveAll writes every record held by the in-memory caches.
func (s *Snapshot) SaveAll(presence *MonthCache, absences *AbsenceCache) error {
	for _, m := range presence.Months() {
		rec, ok := presence.Get(m)
		if !ok {
			continue
		}

		if err := s.SavePresence(rec); err != nil {
			return err
		}
	}

	start, end, ok := absences.Coverage()
	if !ok {
		return nil
	}

	for m := start; !end.Before(m); m = m.Add(1) {
		rec, ok := absences.Get(m)
		if !ok {
			continue
		}

		if err := s.SaveAbsences(rec); err != nil {
			return err
		}
	}

	return nil
}
