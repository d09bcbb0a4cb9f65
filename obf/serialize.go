package obf

import (
	"encoding/json"
	"fmt"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/matrix"
	"github.com/hackertron/diamond-io/measure"
)

// On-disk record layout. Ring elements are stored as raw limb residues
// in coefficient domain, limbs in context order.

type polyRecord [][]uint64

type matrixRecord struct {
	Rows    int          `json:"rows"`
	Cols    int          `json:"cols"`
	Entries []polyRecord `json:"entries"`
}

type levelRecord struct {
	Input int          `json:"input"`
	D0    matrixRecord `json:"d0"`
	D1    matrixRecord `json:"d1"`
}

type obfRecord struct {
	N        int           `json:"n"`
	Primes   []uint64      `json:"primes"`
	Base     uint64        `json:"base"`
	Sigma    float64       `json:"sigma"`
	Dim      int           `json:"dim"`
	InputLen int           `json:"inputLen"`
	A0       matrixRecord  `json:"a0"`
	AL       matrixRecord  `json:"aL"`
	Levels   []levelRecord `json:"levels"`
}

func encodePoly(e *dcrt.RingElement) polyRecord {
	p := e.InvNTT().Poly()
	out := make(polyRecord, len(p.Coeffs))
	for lvl := range p.Coeffs {
		out[lvl] = append([]uint64(nil), p.Coeffs[lvl]...)
	}
	return out
}

func decodePoly(ctx *dcrt.Context, rec polyRecord) (*dcrt.RingElement, error) {
	if len(rec) != ctx.Levels() {
		return nil, fmt.Errorf("%w: poly has %d limbs, want %d", ErrSerialization, len(rec), ctx.Levels())
	}
	e := ctx.NewRingElement()
	p := e.Poly()
	for lvl := range rec {
		if len(rec[lvl]) != ctx.N() {
			return nil, fmt.Errorf("%w: limb %d has %d coefficients, want %d",
				ErrSerialization, lvl, len(rec[lvl]), ctx.N())
		}
		if qi := ctx.Moduli()[lvl]; !residuesBelow(rec[lvl], qi) {
			return nil, fmt.Errorf("%w: limb %d residue out of range", ErrSerialization, lvl)
		}
		copy(p.Coeffs[lvl], rec[lvl])
	}
	return e, nil
}

func residuesBelow(v []uint64, q uint64) bool {
	for _, c := range v {
		if c >= q {
			return false
		}
	}
	return true
}

func encodeMatrixRecord(m *matrix.Matrix) matrixRecord {
	rec := matrixRecord{Rows: m.Rows(), Cols: m.Cols()}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			rec.Entries = append(rec.Entries, encodePoly(m.At(i, j)))
		}
	}
	return rec
}

func decodeMatrixRecord(ctx *dcrt.Context, rec matrixRecord) (*matrix.Matrix, error) {
	if rec.Rows <= 0 || rec.Cols <= 0 || len(rec.Entries) != rec.Rows*rec.Cols {
		return nil, fmt.Errorf("%w: matrix %dx%d with %d entries",
			ErrSerialization, rec.Rows, rec.Cols, len(rec.Entries))
	}
	m := matrix.New(ctx, rec.Rows, rec.Cols)
	for i := 0; i < rec.Rows; i++ {
		for j := 0; j < rec.Cols; j++ {
			e, err := decodePoly(ctx, rec.Entries[i*rec.Cols+j])
			if err != nil {
				return nil, err
			}
			m.Set(i, j, e)
		}
	}
	return m, nil
}

// Marshal serializes the encoding to its JSON record.
func (o *Obfuscation) Marshal() ([]byte, error) {
	rec := obfRecord{
		N:        o.ctx.N(),
		Primes:   o.ctx.Moduli(),
		Base:     o.ctx.Base(),
		Sigma:    o.ctx.Sigma(),
		Dim:      o.dim,
		InputLen: o.inputLen,
		A0:       encodeMatrixRecord(o.a0),
		AL:       encodeMatrixRecord(o.aL),
	}
	for _, lvl := range o.levels {
		rec.Levels = append(rec.Levels, levelRecord{
			Input: lvl.input,
			D0:    encodeMatrixRecord(lvl.d0),
			D1:    encodeMatrixRecord(lvl.d1),
		})
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	measure.Global.Add("obf/record_bytes", int64(len(data)))
	return data, nil
}

// Decode reconstructs an encoding from its JSON record, rebuilding the
// context from the recorded parameters. Any inconsistency returns
// ErrSerialization; there is no partial reconstruction.
func Decode(data []byte) (*Obfuscation, error) {
	var rec obfRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	ctx, err := dcrt.NewContext(rec.N, rec.Primes, rec.Base, rec.Sigma)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if rec.Dim <= 0 || rec.InputLen <= 0 || len(rec.Levels) == 0 {
		return nil, fmt.Errorf("%w: dim=%d inputLen=%d levels=%d",
			ErrSerialization, rec.Dim, rec.InputLen, len(rec.Levels))
	}

	m := ctx.Digits() + 2
	o := &Obfuscation{ctx: ctx, dim: rec.Dim, inputLen: rec.InputLen}
	if o.a0, err = decodeMatrixRecord(ctx, rec.A0); err != nil {
		return nil, err
	}
	if o.aL, err = decodeMatrixRecord(ctx, rec.AL); err != nil {
		return nil, err
	}
	for i, ar := range [2]*matrix.Matrix{o.a0, o.aL} {
		if ar.Rows() != 1 || ar.Cols() != m {
			return nil, fmt.Errorf("%w: boundary %d is %dx%d, want 1x%d",
				ErrSerialization, i, ar.Rows(), ar.Cols(), m)
		}
	}
	for i, lr := range rec.Levels {
		if lr.Input < 0 || lr.Input >= rec.InputLen {
			return nil, fmt.Errorf("%w: level %d reads input %d of %d",
				ErrSerialization, i, lr.Input, rec.InputLen)
		}
		d0, err := decodeMatrixRecord(ctx, lr.D0)
		if err != nil {
			return nil, err
		}
		d1, err := decodeMatrixRecord(ctx, lr.D1)
		if err != nil {
			return nil, err
		}
		want := rec.Dim * m
		for _, dm := range [2]*matrix.Matrix{d0, d1} {
			if dm.Rows() != want || dm.Cols() != want {
				return nil, fmt.Errorf("%w: level %d matrix is %dx%d, want %dx%d",
					ErrSerialization, i, dm.Rows(), dm.Cols(), want, want)
			}
		}
		o.levels = append(o.levels, encodedLevel{input: lr.Input, d0: d0, d1: d1})
	}
	return o, nil
}
