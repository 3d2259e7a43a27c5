package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Key identifies one observation: a trading session and an asset.
type Key struct {
	Session time.Time
	Asset   string
}

// Row is one aligned observation handed to a model: the feature vector
// plus its forward-return label.
type Row struct {
	Key      Key
	Features []float64
	Label    float64
}

// Dataset holds the materialized research inputs: a fixed-width feature
// matrix keyed by (session, asset), a forward-return label series, and a
// realized-volatility series. Missing values are represented as NaN, never
// silently dropped. All inputs are in memory; the dataset performs no I/O.
type Dataset struct {
	featureNames []string
	featureIdx   map[string]int

	features map[Key][]float64
	labels   map[Key]float64
	vols     map[Key]float64

	sessions    []time.Time
	sessionSeen map[time.Time]bool
	assets      []string
	assetSeen   map[string]bool
	dirty       bool
}

// New creates an empty dataset with a fixed feature schema.
func New(featureNames []string) *Dataset {
	idx := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		idx[name] = i
	}
	return &Dataset{
		featureNames: append([]string(nil), featureNames...),
		featureIdx:   idx,
		features:     make(map[Key][]float64),
		labels:       make(map[Key]float64),
		vols:         make(map[Key]float64),
		sessionSeen:  make(map[time.Time]bool),
		assetSeen:    make(map[string]bool),
	}
}

// FeatureNames returns the feature schema in column order.
func (d *Dataset) FeatureNames() []string {
	return append([]string(nil), d.featureNames...)
}

// FeatureIndex returns the column index of a named feature.
func (d *Dataset) FeatureIndex(name string) (int, bool) {
	i, ok := d.featureIdx[name]
	return i, ok
}

// SetRow stores one feature vector. The vector width must match the schema.
func (d *Dataset) SetRow(session time.Time, asset string, values []float64) error {
	if len(values) != len(d.featureNames) {
		return fmt.Errorf("dataset: row width %d does not match schema width %d", len(values), len(d.featureNames))
	}

	key := Key{Session: session, Asset: asset}
	d.features[key] = append([]float64(nil), values...)

	if !d.sessionSeen[session] {
		d.sessionSeen[session] = true
		d.sessions = append(d.sessions, session)
		d.dirty = true
	}
	if !d.assetSeen[asset] {
		d.assetSeen[asset] = true
		d.assets = append(d.assets, asset)
		d.dirty = true
	}

	return nil
}

// SetLabel stores the forward return realized for (session, asset).
func (d *Dataset) SetLabel(session time.Time, asset string, fwdRet float64) {
	d.labels[Key{Session: session, Asset: asset}] = fwdRet
}

// SetVol stores the trailing realized volatility for (session, asset).
func (d *Dataset) SetVol(session time.Time, asset string, vol float64) {
	d.vols[Key{Session: session, Asset: asset}] = vol
}

func (d *Dataset) sortIndex() {
	if !d.dirty {
		return
	}
	sort.Slice(d.sessions, func(i, j int) bool { return d.sessions[i].Before(d.sessions[j]) })
	sort.Strings(d.assets)
	d.dirty = false
}

// Sessions returns the sorted, duplicate-free session timeline.
func (d *Dataset) Sessions() []time.Time {
	d.sortIndex()
	return append([]time.Time(nil), d.sessions...)
}

// Assets returns the sorted list of assets seen in the feature matrix.
func (d *Dataset) Assets() []string {
	d.sortIndex()
	return append([]string(nil), d.assets...)
}

// Features returns the feature vector for a key.
func (d *Dataset) Features(session time.Time, asset string) ([]float64, bool) {
	v, ok := d.features[Key{Session: session, Asset: asset}]
	return v, ok
}

// Feature returns a single named feature value. Missing key or unknown
// name yields (NaN, false).
func (d *Dataset) Feature(session time.Time, asset string, name string) (float64, bool) {
	i, ok := d.featureIdx[name]
	if !ok {
		return math.NaN(), false
	}
	v, ok := d.features[Key{Session: session, Asset: asset}]
	if !ok {
		return math.NaN(), false
	}
	return v[i], true
}

// Label returns the forward return for a key.
func (d *Dataset) Label(session time.Time, asset string) (float64, bool) {
	v, ok := d.labels[Key{Session: session, Asset: asset}]
	return v, ok
}

// RealizedVol returns the realized volatility for a key.
func (d *Dataset) RealizedVol(session time.Time, asset string) (float64, bool) {
	v, ok := d.vols[Key{Session: session, Asset: asset}]
	return v, ok
}

// LatestFor returns the most recent session at or before the end of the
// timeline for which the asset has a feature row.
func (d *Dataset) LatestFor(asset string) (time.Time, bool) {
	d.sortIndex()
	for i := len(d.sessions) - 1; i >= 0; i-- {
		if _, ok := d.features[Key{Session: d.sessions[i], Asset: asset}]; ok {
			return d.sessions[i], true
		}
	}
	return time.Time{}, false
}

// LabeledRows returns, in deterministic (session, asset) order, every row
// in the given sessions that has both a feature vector and a label. Rows
// whose label is NaN are excluded; NaN feature values pass through so the
// model contract can decide how to treat them.
func (d *Dataset) LabeledRows(sessions []time.Time) []Row {
	d.sortIndex()

	var rows []Row
	for _, s := range sessions {
		for _, a := range d.assets {
			key := Key{Session: s, Asset: a}
			feats, ok := d.features[key]
			if !ok {
				continue
			}
			label, ok := d.labels[key]
			if !ok || math.IsNaN(label) {
				continue
			}
			rows = append(rows, Row{Key: key, Features: feats, Label: label})
		}
	}
	return rows
}

// AssetsAt returns, in sorted order, the assets with a feature row at
// the given session.
func (d *Dataset) AssetsAt(session time.Time) []string {
	d.sortIndex()

	var out []string
	for _, a := range d.assets {
		if _, ok := d.features[Key{Session: session, Asset: a}]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of feature rows.
func (d *Dataset) Len() int {
	return len(d.features)
}
