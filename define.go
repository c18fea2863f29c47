package ocidrv

// Define describes one output column slot of a Resultset -- the
// counterpart of Bind for fetched values. The backend calls this step
// "define"; the driver performs it implicitly via database/sql.Rows.Scan,
// but still exposes Define.Info so callers can inspect the fetched
// datatype/size before scanning, mirroring the backend's column-info API.
type Define struct {
	info AttrInfo
	pos  int
}

// Info returns the column's AttrInfo (name, DataType, size, precision,
// scale, nullability) as reported by the backend's column metadata.
func (d *Define) Info() AttrInfo { return d.info }

// Position returns the column's 0-based ordinal in the resultset.
func (d *Define) Position() int { return d.pos }
