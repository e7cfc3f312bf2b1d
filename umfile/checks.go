package umfile

import (
	"math"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/section"
	"github.com/arloliu/mule/stash"
)

// fileChecks run in order; each may add violations or return a fault.
var fileChecks = []func(*validator) error{
	checkDatasetType,
	checkGridStaggering,
	checkIntegerConstants,
	checkRealConstants,
	checkLevelDependentConstants,
	checkRowDependentConstants,
	checkColumnDependentConstants,
	checkFields,
}

func checkDatasetType(v *validator) error {
	dt := v.f.Header.DatasetType()
	v.layoutKnown = v.lay.ValidDatasetType(dt)
	if v.layoutKnown {
		return nil
	}

	return v.fileError(section.FixedHeaderSchema.Name, "dataset_type", "dataset-type",
		"incorrect dataset_type (found %d, should be one of %v)", dt, codes(v.lay.DatasetTypes))
}

func checkGridStaggering(v *validator) error {
	gs := v.f.Header.GridStaggering()
	if v.lay.ValidGridStaggering(gs) {
		return nil
	}

	return v.fileError(section.FixedHeaderSchema.Name, "grid_staggering", "grid-staggering",
		"unsupported grid_staggering (found %d, can support one of %v)", gs, codes(v.lay.GridStaggering))
}

func checkIntegerConstants(v *validator) error {
	if !v.layoutKnown {
		return nil
	}

	ic := v.f.IntegerConstants
	if ic == nil {
		return structural("integer_constants", errs.ErrMissingComponent)
	}

	want := v.lay.Components[0].Schema.Dims[0]
	if ic.Len() == want {
		return nil
	}

	return v.fileError("integer_constants", "", "component-shape",
		"incorrect number of integer constants (found %d, should be %d)", ic.Len(), want)
}

func checkRealConstants(v *validator) error {
	if !v.layoutKnown {
		return nil
	}

	rc := v.f.RealConstants
	if rc == nil {
		return structural("real_constants", errs.ErrMissingComponent)
	}

	want := v.lay.Components[1].Schema.Dims[0]
	if rc.Len() == want {
		return nil
	}

	return v.fileError("real_constants", "", "component-shape",
		"incorrect number of real constants (found %d, should be %d)", rc.Len(), want)
}

func checkLevelDependentConstants(v *validator) error {
	if !v.layoutKnown {
		return nil
	}

	levels, err := v.intConstant(v.lay.LevelAttribute)
	if err != nil {
		return err
	}

	ldc := v.f.LevelDependentConstants
	if ldc == nil {
		return v.fileError("level_dependent_constants", "", "component-missing",
			"level dependent constants not found")
	}

	want := [2]int{int(levels) + v.lay.LevelExtra, v.lay.Components[2].Schema.Dims[1]}
	if got := [2]int{ldc.Rows(), ldc.Cols()}; got != want {
		return v.fileError("level_dependent_constants", "", "component-shape",
			"incorrectly shaped level dependent constants based on file type and %s "+
				"(found (%d, %d), should be (%d, %d))",
			v.lay.LevelAttribute, got[0], got[1], want[0], want[1])
	}

	return nil
}

func checkRowDependentConstants(v *validator) error {
	rdc := v.f.RowDependentConstants
	if !v.layoutKnown || rdc == nil {
		return nil
	}

	rows, err := v.intConstant("num_rows")
	if err != nil {
		return err
	}
	if v.f.Header.GridStaggering() == int64(format.StaggeringEndGame) {
		rows++
	}

	want := [2]int{int(rows), v.lay.Components[3].Schema.Dims[1]}
	if got := [2]int{rdc.Rows(), rdc.Cols()}; got != want {
		return v.fileError("row_dependent_constants", "", "component-shape",
			"incorrectly shaped row dependent constants based on file type and num_rows "+
				"(found (%d, %d), should be (%d, %d))", got[0], got[1], want[0], want[1])
	}

	return nil
}

func checkColumnDependentConstants(v *validator) error {
	cdc := v.f.ColumnDependentConstants
	if !v.layoutKnown || cdc == nil {
		return nil
	}

	cols, err := v.intConstant("num_cols")
	if err != nil {
		return err
	}

	want := [2]int{int(cols), v.lay.Components[4].Schema.Dims[1]}
	if got := [2]int{cdc.Rows(), cdc.Cols()}; got != want {
		return v.fileError("column_dependent_constants", "", "component-shape",
			"incorrectly shaped column dependent constants based on file type and num_cols "+
				"(found (%d, %d), should be (%d, %d))", got[0], got[1], want[0], want[1])
	}

	return nil
}

// domain holds the file values that field grids are compared against.
type domain struct {
	numCols, numRows   int64
	startLon, startLat float64
	colSpacing         float64
	rowSpacing         float64
	realMDI            float64
	horizGridType      int64
	datasetType        int64
	staggering         int64
	variableResolution bool
}

func (v *validator) domain() (*domain, error) {
	d := &domain{
		horizGridType:      v.f.Header.HorizGridType(),
		datasetType:        v.f.Header.DatasetType(),
		staggering:         v.f.Header.GridStaggering(),
		realMDI:            v.lay.RealMDI,
		variableResolution: v.f.RowDependentConstants != nil && v.f.ColumnDependentConstants != nil,
	}

	var err error
	if d.numCols, err = v.intConstant("num_cols"); err != nil {
		return nil, err
	}
	if d.numRows, err = v.intConstant("num_rows"); err != nil {
		return nil, err
	}
	if d.startLon, err = v.realConstant("start_lon"); err != nil {
		return nil, err
	}
	if d.startLat, err = v.realConstant("start_lat"); err != nil {
		return nil, err
	}
	if d.colSpacing, err = v.realConstant("col_spacing"); err != nil {
		return nil, err
	}
	if d.rowSpacing, err = v.realConstant("row_spacing"); err != nil {
		return nil, err
	}
	if _, ok := v.f.RealConstants.Schema().Position("real_mdi"); ok {
		if d.realMDI, err = v.realConstant("real_mdi"); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// checkFields validates every lookup against the file headers. It needs
// both integer and real constants and is skipped without them.
func checkFields(v *validator) error {
	if v.f.IntegerConstants == nil || v.f.RealConstants == nil {
		return nil
	}

	var d *domain
	for i, fld := range v.f.Fields {
		lk := fld.Lookup()
		lbrel := lk.Release()

		switch {
		case lbrel == section.ReleaseMissing:
			continue
		case lbrel == v.lay.IntegerMDI && isDump(v.f.Header.DatasetType()):
			if n4 := format.LBPack(lk.LBPack()).N4(); n4 != 2 {
				if err := v.fieldError(i, "lbpack", "dump-special",
					"special dump field does not have lbpack N4 == 2 (found %d)", n4); err != nil {
					return err
				}
			}

			continue
		case lbrel != section.Release2 && lbrel != section.Release3:
			if err := v.fieldError(i, "lbrel", "lookup-release",
				"unrecognised release number %d", lbrel); err != nil {
				return err
			}

			continue
		}

		if format.LBPack(lk.LBPack()).N2() == format.CompressedToMask {
			if err := checkLandSeaShape(v, i, lk); err != nil {
				return err
			}

			continue
		}

		if d == nil {
			var err error
			if d, err = v.domain(); err != nil {
				return err
			}
		}

		if err := checkFieldGrid(v, d, i, lk); err != nil {
			return err
		}
	}

	return nil
}

func isDump(dt int64) bool {
	return dt == int64(format.DatasetDump) || dt == int64(format.DatasetTimeMean)
}

func checkLandSeaShape(v *validator, i int, lk *section.Lookup) error {
	if lk.LBRow() != 0 {
		if err := v.fieldError(i, "lbrow", "land-sea-shape",
			"rows not set to zero for land/sea packed field (found %d)", lk.LBRow()); err != nil {
			return err
		}
	}
	if lk.LBNpt() != 0 {
		if err := v.fieldError(i, "lbnpt", "land-sea-shape",
			"columns not set to zero for land/sea packed field (found %d)", lk.LBNpt()); err != nil {
			return err
		}
	}

	return nil
}

func checkFieldGrid(v *validator, d *domain, i int, lk *section.Lookup) error {
	ok, err := checkGridType(v, d, i, lk)
	if err != nil || !ok {
		return err
	}

	if d.variableResolution {
		return checkVariableResolution(v, d, i, lk)
	}

	if v.cfg.catalog != nil {
		if entry := catalogEntry(v.cfg.catalog, lk); entry != nil {
			handled, err := checkCatalogGrid(v, d, i, lk, entry)
			if err != nil || handled {
				return err
			}
		}
	}

	return checkRegularGrid(v, d, i, lk)
}

// checkGridType reports whether the field's grid can be compared with the
// file's at all. When it cannot, the reason is recorded as a violation.
func checkGridType(v *validator, d *domain, i int, lk *section.Lookup) (bool, error) {
	lbcode := lk.LBCode()
	if lbcode != 1 && lbcode != 101 {
		return false, v.fieldError(i, "lbcode", "grid-type",
			"cannot validate field with irregular lbcode %d", lbcode)
	}

	fileRotated := d.horizGridType > 100
	fieldRotated := lbcode == 101
	if fileRotated != fieldRotated {
		return false, v.fieldError(i, "lbcode", "grid-rotation",
			"incompatible grid rotation (file rotated: %t, field rotated: %t)", fileRotated, fieldRotated)
	}

	fileHem := d.horizGridType % 100
	if lk.LBHem() != fileHem && d.datasetType != int64(format.DatasetBoundary) {
		return false, v.fieldError(i, "lbhem", "grid-type",
			"incompatible grid type (file grid: %d, field grid: %d)", fileHem, lk.LBHem())
	}

	return true, nil
}

func checkVariableResolution(v *validator, d *domain, i int, lk *section.Lookup) error {
	if absInt(lk.LBNpt()-d.numCols) > 1 {
		if err := v.fieldError(i, "lbnpt", "variable-resolution",
			"column count %d inconsistent with variable resolution grid constants (%d)", lk.LBNpt(), d.numCols); err != nil {
			return err
		}
	}
	if absInt(lk.LBRow()-d.numRows) > 1 {
		if err := v.fieldError(i, "lbrow", "variable-resolution",
			"row count %d inconsistent with variable resolution grid constants (%d)", lk.LBRow(), d.numRows); err != nil {
			return err
		}
	}

	for _, w := range []struct {
		name  string
		value float64
	}{{"bzx", lk.BZX()}, {"bzy", lk.BZY()}, {"bdx", lk.BDX()}, {"bdy", lk.BDY()}} {
		if w.value == d.realMDI {
			continue
		}
		if err := v.fieldError(i, w.name, "variable-resolution",
			"%s is %g, not RMDI, in variable resolution file", w.name, w.value); err != nil {
			return err
		}
	}

	return nil
}

// regularTolerance is the allowed distance, in field grid spacings,
// between the field's extent and the file's.
const regularTolerance = 1.5

// checkRegularGrid checks that the field covers the file's domain.
func checkRegularGrid(v *validator, d *domain, i int, lk *section.Lookup) error {
	bzx, bdx := lk.BZX(), lk.BDX()
	fileEndLon := d.startLon + float64(d.numCols-1)*d.colSpacing
	if err := checkExtent(v, i, "bzx", "longitudes", bzx, bdx, lk.LBNpt(), d.startLon, fileEndLon, d.colSpacing); err != nil {
		return err
	}

	bzy, bdy := lk.BZY(), lk.BDY()
	fileEndLat := d.startLat + float64(d.numRows-1)*d.rowSpacing

	return checkExtent(v, i, "bzy", "latitudes", bzy, bdy, lk.LBRow(), d.startLat, fileEndLat, d.rowSpacing)
}

func checkExtent(v *validator, i int, attr, axis string, origin, step float64, count int64,
	fileStart, fileEnd, fileStep float64,
) error {
	start := origin + step
	end := origin + float64(count)*step
	tol := regularTolerance * math.Abs(step)

	if math.Abs(start-fileStart) <= tol && math.Abs(end-fileEnd) <= tol {
		return nil
	}

	return v.fieldError(i, attr, "grid-extent",
		"field grid %s inconsistent (file grid: %g to %g, spacing %g; field grid: %g to %g, spacing %g)",
		axis, fileStart, fileEnd, fileStep, start, end, step)
}

// catalogEntry finds the entry of the field's stash code, or nil.
func catalogEntry(c *stash.Catalog, lk *section.Lookup) *stash.Entry {
	model := int(lk.LBUser7())
	if model <= 0 {
		model = stash.ModelAtmosphere
	}

	entry, err := c.ByCode(model, int(lk.LBUser4()))
	if err != nil {
		return nil
	}

	return entry
}

// expectedGrid is where a field on a given catalog grid should lie.
type expectedGrid struct {
	startLon, startLat     float64
	lonSpacing, latSpacing float64
	numCols, numRows       int64
}

// checkCatalogGrid compares a field with the grid its catalog entry places
// it on. It reports false when the grid code is not one it knows, so the
// caller can fall back to the regular check.
func checkCatalogGrid(v *validator, d *domain, i int, lk *section.Lookup, entry *stash.Entry) (bool, error) {
	exp := expectedGrid{
		startLon:   d.startLon,
		startLat:   d.startLat,
		lonSpacing: d.colSpacing,
		latSpacing: d.rowSpacing,
		numCols:    d.numCols,
		numRows:    d.numRows,
	}
	nd := d.staggering == int64(format.StaggeringNewDynamics)
	eg := d.staggering == int64(format.StaggeringEndGame)
	halfCol, halfRow := d.colSpacing/2, d.rowSpacing/2

	switch entry.Grid {
	case stash.GridThetaPoints, stash.GridThetaLandPoints, stash.GridThetaSeaPoints,
		stash.GridThetaAllPoints, stash.GridThetaLBC, stash.GridThetaOceanLBC:
		if eg {
			exp.startLon += halfCol
			exp.startLat += halfRow
		}
	case stash.GridUPoints:
		switch {
		case nd:
			exp.startLon += halfCol
		case eg:
			exp.startLat += halfRow
		}
	case stash.GridULBC:
		switch {
		case nd:
			exp.startLon += halfCol
			exp.numCols--
		case eg:
			exp.startLat += halfRow
		}
	case stash.GridVPoints, stash.GridVLBC:
		switch {
		case nd:
			exp.startLat += halfRow
			exp.numRows--
		case eg:
			exp.startLon += halfCol
			exp.numRows++
		}
	case stash.GridUVPoints, stash.GridUVLandPoints, stash.GridUVSeaPoints:
		switch {
		case nd:
			exp.startLon += halfCol
			exp.startLat += halfRow
			exp.numRows--
		case eg:
			exp.numRows++
		}
	case stash.GridRiverRouting:
		if d.horizGridType != 0 {
			return true, v.fieldError(i, "lbuser4", "catalog-grid",
				"river routing field is invalid for non-global domains (horiz_grid_type %d)", d.horizGridType)
		}
		exp = expectedGrid{startLon: 0.5, startLat: -89.5, lonSpacing: 1, latSpacing: 1, numCols: 360, numRows: 180}
	default:
		return false, nil
	}

	if lk.LBProc()&64 != 0 {
		return false, nil
	}

	tol := math.Abs(d.colSpacing) * 0.001
	if exp.numCols != lk.LBNpt() || math.Abs(exp.lonSpacing-lk.BDX()) > tol ||
		math.Abs(exp.startLon-(lk.BZX()+lk.BDX())) > tol {
		err := v.fieldError(i, "bzx", "catalog-grid",
			"field grid longitudes inconsistent with stash grid %d "+
				"(expected %d points from %g, spacing %g; lookup has %d points from %g, spacing %g)",
			entry.Grid, exp.numCols, exp.startLon, exp.lonSpacing, lk.LBNpt(), lk.BZX()+lk.BDX(), lk.BDX())
		if err != nil {
			return true, err
		}
	}

	tol = math.Abs(d.rowSpacing) * 0.001
	if exp.numRows != lk.LBRow() || math.Abs(exp.latSpacing-lk.BDY()) > tol ||
		math.Abs(exp.startLat-(lk.BZY()+lk.BDY())) > tol {
		err := v.fieldError(i, "bzy", "catalog-grid",
			"field grid latitudes inconsistent with stash grid %d "+
				"(expected %d points from %g, spacing %g; lookup has %d points from %g, spacing %g)",
			entry.Grid, exp.numRows, exp.startLat, exp.latSpacing, lk.LBRow(), lk.BZY()+lk.BDY(), lk.BDY())
		if err != nil {
			return true, err
		}
	}

	return true, nil
}

// codes strips the enum type so values print as numbers.
func codes[T ~int64](values []T) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}

	return out
}

func absInt(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}
