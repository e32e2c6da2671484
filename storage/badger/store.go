package badger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v2"

	"github.com/akhenakh/gridcube/payload"
	"github.com/akhenakh/gridcube/storage"
)

// Store is a local implementation of the three sink stores on one badger DB.
type Store struct {
	*badger.DB
}

// WritePoint stores one key per measure, all sharing device and time.
func (s *Store) WritePoint(ctx context.Context, p storage.Point) error {
	return s.Update(func(txn *badger.Txn) error {
		for _, m := range p.Measures {
			e := badger.NewEntry(storage.PointKey(p.DeviceID, p.Time, m.Name), storage.Int64tob(m.Value))
			if err := txn.SetEntry(e); err != nil {
				return err
			}
		}
		return list(txn, p.DeviceID)
	})
}

// PutLatest stores a latest sample record at device and time.
func (s *Store) PutLatest(ctx context.Context, ls storage.LatestSample) error {
	v, err := json.Marshal(ls)
	if err != nil {
		return err
	}
	return s.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry(storage.SampleKey(ls.DeviceID, ls.Time), v)); err != nil {
			return err
		}
		return list(txn, ls.DeviceID)
	})
}

// TouchDevice sets updatedAt and merges attrs into the device info record.
func (s *Store) TouchDevice(ctx context.Context, deviceID string, at time.Time, attrs map[string]string) error {
	return s.Update(func(txn *badger.Txn) error {
		info, err := getInfo(txn, deviceID)
		if err != nil {
			return err
		}
		if info == nil {
			info = &storage.DeviceInfo{DeviceID: deviceID}
		}
		info.UpdatedAt = at
		for k, v := range attrs {
			if info.Attributes == nil {
				info.Attributes = make(map[string]string, len(attrs))
			}
			info.Attributes[k] = v
		}

		v, err := json.Marshal(info)
		if err != nil {
			return err
		}
		if err := txn.SetEntry(badger.NewEntry(storage.InfoKey(deviceID), v)); err != nil {
			return err
		}
		return list(txn, deviceID)
	})
}

// Latest returns the most recent latest sample for deviceID, nil if none.
func (s *Store) Latest(deviceID string) (*storage.LatestSample, error) {
	var res *storage.LatestSample
	err := s.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 1
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := storage.SamplePrefix(deviceID)
		it.Seek(prefix)
		if !it.ValidForPrefix(prefix) {
			return nil
		}

		item := it.Item()
		t, err := storage.ReadSampleKey(item.KeyCopy(nil))
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		ls := &storage.LatestSample{}
		if err := json.Unmarshal(v, ls); err != nil {
			return err
		}
		ls.Time = t
		res = ls
		return nil
	})
	return res, err
}

// Points returns up to count points for deviceID, newest first.
func (s *Store) Points(deviceID string, count int) ([]storage.Point, error) {
	var res []storage.Point
	err := s.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = count
		if opts.PrefetchSize <= 0 {
			opts.PrefetchSize = 10
		}
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := storage.PointPrefix(deviceID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			dev, t, measure, err := storage.ReadPointKey(item.KeyCopy(nil))
			if err != nil {
				return err
			}
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			// measures of one point are adjacent since they share the time
			if n := len(res); n > 0 && res[n-1].Time.Equal(t) {
				res[n-1].Measures = append(res[n-1].Measures, toMeasure(measure, v))
				continue
			}
			if count > 0 && len(res) >= count {
				break
			}
			res = append(res, storage.Point{
				DeviceID: dev,
				Time:     t,
				Measures: []payload.Measure{toMeasure(measure, v)},
			})
		}
		return nil
	})
	return res, err
}

// DeviceInfo returns the device info record, nil if the device was never seen.
func (s *Store) DeviceInfo(deviceID string) (*storage.DeviceInfo, error) {
	var res *storage.DeviceInfo
	err := s.View(func(txn *badger.Txn) error {
		var err error
		res, err = getInfo(txn, deviceID)
		return err
	})
	return res, err
}

// Devices list all device ids
func (s *Store) Devices() ([]string, error) {
	var res []string
	err := s.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := storage.ListPrefix()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			res = append(res, string(k[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func getInfo(txn *badger.Txn, deviceID string) (*storage.DeviceInfo, error) {
	item, err := txn.Get(storage.InfoKey(deviceID))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	info := &storage.DeviceInfo{}
	if err := json.Unmarshal(v, info); err != nil {
		return nil, err
	}
	return info, nil
}

func toMeasure(name string, v []byte) payload.Measure {
	return payload.Measure{Name: name, Value: storage.Btoint64(v)}
}

func list(txn *badger.Txn, deviceID string) error {
	return txn.SetEntry(badger.NewEntry(storage.ListKey(deviceID), nil))
}
