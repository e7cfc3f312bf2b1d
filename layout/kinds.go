package layout

import (
	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/section"
)

const (
	wordsPerSector = 512
	dataAlignment  = 524288
)

var ffIntegerConstants = map[string]int{
	"timestep":              1,
	"meaning_interval":      2,
	"dumps_in_mean":         3,
	"num_cols":              6,
	"num_rows":              7,
	"num_p_levels":          8,
	"num_wet_levels":        9,
	"num_soil_levels":       10,
	"num_cloud_levels":      11,
	"num_tracer_levels":     12,
	"num_boundary_levels":   13,
	"num_passive_tracers":   14,
	"num_field_types":       15,
	"n_steps_since_river":   16,
	"height_algorithm":      17,
	"num_radiation_vars":    18,
	"river_row_length":      19,
	"river_num_rows":        20,
	"integer_mdi":           21,
	"triffid_call_period":   22,
	"triffid_last_step":     23,
	"first_constant_rho":    24,
	"num_land_points":       25,
	"num_ozone_levels":      26,
	"num_tracer_adv_levels": 27,
	"num_soil_hydr_levels":  28,
	"num_conv_levels":       34,
	"radiation_timestep":    35,
	"amip_flag":             36,
	"amip_first_year":       37,
	"amip_first_month":      38,
	"amip_current_day":      39,
	"ozone_current_month":   40,
	"sh_zonal_flag":         41,
	"sh_zonal_begin":        42,
	"sh_zonal_period":       43,
	"suhe_level_weight":     44,
	"suhe_level_cutoff":     45,
	"frictional_timescale":  46,
}

var ffRealConstants = map[string]int{
	"col_spacing":        1,
	"row_spacing":        2,
	"start_lat":          3,
	"start_lon":          4,
	"north_pole_lat":     5,
	"north_pole_lon":     6,
	"atmos_year":         8,
	"atmos_day":          9,
	"atmos_hour":         10,
	"atmos_minute":       11,
	"atmos_second":       12,
	"top_theta_height":   16,
	"mean_diabatic_flux": 18,
	"mass":               19,
	"energy":             20,
	"energy_drift":       21,
	"real_mdi":           29,
}

var ffLevelDependentConstants = map[string]int{
	"eta_at_theta":   1,
	"eta_at_rho":     2,
	"rhcrit":         3,
	"soil_thickness": 4,
	"zsea_at_theta":  5,
	"c_at_theta":     6,
	"zsea_at_rho":    7,
	"c_at_rho":       8,
}

var lbcIntegerConstants = map[string]int{
	"num_times":          3,
	"num_cols":           6,
	"num_rows":           7,
	"num_p_levels":       8,
	"num_wet_levels":     9,
	"num_field_types":    15,
	"height_algorithm":   17,
	"integer_mdi":        21,
	"first_constant_rho": 24,
}

var lbcLevelDependentConstants = map[string]int{
	"eta_at_theta":   1,
	"eta_at_rho":     2,
	"rhcrit":         3,
	"soil_thickness": 4,
}

var ancilIntegerConstants = map[string]int{
	"num_times":       3,
	"num_cols":        6,
	"num_rows":        7,
	"num_levels":      8,
	"num_field_types": 15,
}

var ancilRealConstants = map[string]int{
	"col_spacing":    1,
	"row_spacing":    2,
	"start_lat":      3,
	"start_lon":      4,
	"north_pole_lat": 5,
	"north_pole_lon": 6,
}

var rowDependentConstants = map[string]int{
	"phi_p": 1,
	"phi_v": 2,
}

var columnDependentConstants = map[string]int{
	"lambda_p": 1,
	"lambda_u": 2,
}

// components builds the ordered component table shared by every kind; only
// the schemas of the first five components differ.
func components(ic, rc, ldc, rdc, cdc *section.Schema) [NumComponents]ComponentSpec {
	return [NumComponents]ComponentSpec{
		{ID: IntegerConstants, Schema: ic, StartSlot: section.SlotIntegerConstantsStart, Required: true},
		{ID: RealConstants, Schema: rc, StartSlot: section.SlotRealConstantsStart, Real: true, Required: true},
		{ID: LevelDependentConstants, Schema: ldc, StartSlot: section.SlotLevelDependentStart},
		{ID: RowDependentConstants, Schema: rdc, StartSlot: section.SlotRowDependentStart},
		{ID: ColumnDependentConstants, Schema: cdc, StartSlot: section.SlotColumnDependentStart},
		{ID: FieldsOfConstants, Schema: section.GenericMatrix("fields_of_constants"), StartSlot: section.SlotFieldsOfConstantsStart},
		{ID: ExtraConstants, Schema: section.GenericVector("extra_constants"), StartSlot: section.SlotExtraConstantsStart, Real: true},
		{ID: TempHistoryfile, Schema: section.GenericVector("temp_historyfile"), StartSlot: section.SlotTempHistoryfileStart},
		{ID: CompressedFieldIndex1, Schema: section.GenericVector("compressed_field_index1"), StartSlot: section.SlotCompressedIndex1Start},
		{ID: CompressedFieldIndex2, Schema: section.GenericVector("compressed_field_index2"), StartSlot: section.SlotCompressedIndex2Start},
		{ID: CompressedFieldIndex3, Schema: section.GenericVector("compressed_field_index3"), StartSlot: section.SlotCompressedIndex3Start},
	}
}

var fieldsFileLayout = &Layout{
	Kind:             KindFieldsFile,
	FixedHeaderWords: section.FixedHeaderWords,
	LookupWords:      section.LookupWords,
	WordsPerSector:   wordsPerSector,
	DataAlignment:    dataAlignment,
	IntegerMDI:       section.IntegerMDI,
	RealMDI:          section.RealMDI,
	Components: components(
		section.NewSchema("integer_constants", []int{46}, ffIntegerConstants),
		section.NewSchema("real_constants", []int{38}, ffRealConstants),
		section.NewSchema("level_dependent_constants", []int{0, 8}, ffLevelDependentConstants),
		section.NewSchema("row_dependent_constants", []int{0, 2}, rowDependentConstants),
		section.NewSchema("column_dependent_constants", []int{0, 2}, columnDependentConstants),
	),
	DatasetTypes:       []format.DatasetType{format.DatasetDump, format.DatasetTimeMean, format.DatasetInstantaneous},
	GridStaggering:     []format.GridStaggering{format.StaggeringNewDynamics, format.StaggeringEndGame},
	DefaultDatasetType: format.DatasetInstantaneous,
	LevelAttribute:     "num_p_levels",
	LevelExtra:         1,
	ReadPackings:       []int64{0, 1, 2, 5, 6, 7, 120, 220, 122, 222},
	WritePackings:      []int64{0, 1, 2, 5, 6, 7, 120, 220, 122, 222},
}

var ancilLayout = &Layout{
	Kind:             KindAncil,
	FixedHeaderWords: section.FixedHeaderWords,
	LookupWords:      section.LookupWords,
	WordsPerSector:   wordsPerSector,
	DataAlignment:    dataAlignment,
	IntegerMDI:       section.IntegerMDI,
	RealMDI:          section.RealMDI,
	Components: components(
		section.NewSchema("integer_constants", []int{15}, ancilIntegerConstants),
		section.NewSchema("real_constants", []int{6}, ancilRealConstants),
		section.NewSchema("level_dependent_constants", []int{0, 4}, lbcLevelDependentConstants),
		section.NewSchema("row_dependent_constants", []int{0, 2}, rowDependentConstants),
		section.NewSchema("column_dependent_constants", []int{0, 2}, columnDependentConstants),
	),
	DatasetTypes:       []format.DatasetType{format.DatasetAncillary},
	GridStaggering:     []format.GridStaggering{format.StaggeringNewDynamics, format.StaggeringEndGame},
	DefaultDatasetType: format.DatasetAncillary,
	LevelAttribute:     "num_levels",
	LevelExtra:         0,
	ReadPackings:       []int64{0, 1, 2, 5, 6, 7, 120, 220, 122, 222},
	WritePackings:      []int64{0, 1, 2, 5, 6, 7, 120, 220, 122, 222},
}

var lbcLayout = &Layout{
	Kind:             KindLBC,
	FixedHeaderWords: section.FixedHeaderWords,
	LookupWords:      section.LookupWords,
	WordsPerSector:   wordsPerSector,
	DataAlignment:    dataAlignment,
	IntegerMDI:       section.IntegerMDI,
	RealMDI:          section.RealMDI,
	Components: components(
		section.NewSchema("integer_constants", []int{46}, lbcIntegerConstants),
		section.NewSchema("real_constants", []int{38}, ffRealConstants),
		section.NewSchema("level_dependent_constants", []int{0, 4}, lbcLevelDependentConstants),
		section.NewSchema("row_dependent_constants", []int{0, 2}, rowDependentConstants),
		section.NewSchema("column_dependent_constants", []int{0, 2}, columnDependentConstants),
	),
	DatasetTypes:       []format.DatasetType{format.DatasetBoundary},
	GridStaggering:     []format.GridStaggering{format.StaggeringNewDynamics, format.StaggeringEndGame},
	DefaultDatasetType: format.DatasetBoundary,
	LevelAttribute:     "num_p_levels",
	LevelExtra:         1,
	ReadPackings:       []int64{0, 2, 5, 6, 7},
	WritePackings:      []int64{0, 2, 5, 6, 7},
	RimData:            true,
}
