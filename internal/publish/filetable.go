package publish

// fileEntry is one row of a region's file table: the dynamic-dispatch
// hierarchy the original domain readers used, reimplemented as a flat
// table the controller iterates instead.
type fileEntry struct {
	suffix    string // appended to the dataset name to form the on-disk file name
	blockName string // block this file's bytes populate
	required  bool
}

// StaticRegionSuffix and UpdatableRegionSuffix name the two logical
// regions a publication always produces.
const (
	StaticRegionSuffix    = "static"
	UpdatableRegionSuffix = "updatable"
)

// staticFileTable mirrors Storage::PopulateStaticLayout's file list.
var staticFileTable = []fileEntry{
	{suffix: ".osrm.icd", blockName: "/common/icd", required: true},
	{suffix: ".osrm.properties", blockName: "/common/properties", required: true},
	{suffix: ".osrm.nbg_nodes", blockName: "/common/nbg_nodes", required: true},
	{suffix: ".osrm.ebg_nodes", blockName: "/common/ebg_nodes", required: true},
	{suffix: ".osrm.tls", blockName: "/common/turn_lane_data", required: true},
	{suffix: ".osrm.tld", blockName: "/common/turn_lane_description", required: true},
	{suffix: ".osrm.maneuver_overrides", blockName: "/common/maneuver_overrides", required: true},
	{suffix: ".osrm.edges", blockName: "/common/edges", required: true},
	{suffix: ".osrm.names", blockName: "/common/names", required: true},
	{suffix: ".osrm.ramIndex", blockName: "/common/ram_index", required: true},
	{suffix: ".osrm.cells", blockName: "/mld/cells", required: false},
	{suffix: ".osrm.partition", blockName: "/mld/partition", required: false},
	{suffix: ".osrm.hsgr", blockName: "/ch/metrics/default/graph", required: false},
	{suffix: ".osrm.mldgr", blockName: "/mld/metrics/default/graph", required: false},
}

// updatableFileTable mirrors Storage::PopulateUpdatableLayout's file list.
var updatableFileTable = []fileEntry{
	{suffix: ".osrm.datasource_names", blockName: "/common/datasource_names", required: true},
	{suffix: ".osrm.geometry", blockName: "/common/geometry", required: true},
	{suffix: ".osrm.turn_weight_penalties", blockName: "/common/turn_weight_penalties", required: true},
	{suffix: ".osrm.turn_duration_penalties", blockName: "/common/turn_duration_penalties", required: true},
	{suffix: ".osrm.mldgr", blockName: "/mld/metrics/default/graph", required: false},
	{suffix: ".osrm.cell_metrics", blockName: "/mld/metrics/default/cell_metrics", required: false},
	{suffix: ".osrm.hsgr", blockName: "/ch/metrics/default/graph", required: false},
}

// edgesBlockName and the graph block names participate in the
// connectivity-checksum cross-check: when both an edges block and a
// graph block are present in the same region, their leading checksums
// must agree.
const edgesBlockName = "/common/edges"

var graphBlockNames = []string{"/ch/metrics/default/graph", "/mld/metrics/default/graph"}

func fileTableFor(regionSuffix string) []fileEntry {
	if regionSuffix == StaticRegionSuffix {
		return staticFileTable
	}
	return updatableFileTable
}
