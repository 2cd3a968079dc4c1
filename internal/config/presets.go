package config

const pagesURL = "https://cms-pdmv.cern.ch/pages/"

func preset(name, title string, columns []ColumnConfig, sort, dir string) Dashboard {
	return Dashboard{
		Name:        name,
		Title:       title,
		Source:      pagesURL + name + "/data.json",
		BaseURL:     pagesURL + name,
		Columns:     columns,
		DefaultSort: sort,
		DefaultDir:  dir,
	}
}

// originalTable is the per-input-dataset table published next to a ReReco
// page's data.json. Its columns are inferred from the data.
func originalTable(page, title string) Dashboard {
	return Dashboard{
		Name:        page + "_original",
		Title:       title,
		Source:      pagesURL + page + "/data_original_table.json",
		Timestamp:   "original_table_timestamp.txt",
		BaseURL:     pagesURL + page + "/original_table",
		DefaultSort: "input_dataset",
	}
}

// Presets returns the PdmV status pages known out of the box.
func Presets() []Dashboard {
	return []Dashboard{
		preset("main_bkg_ul", "Main background UL", []ColumnConfig{
			{Key: "root_prepid", Title: "Root"},
			{Key: "dataset", Title: "Dataset"},
			{Key: "status", Title: "Status"},
			{Key: "mini", Title: "MiniAOD"},
			{Key: "mini_status", Title: "Mini status"},
			{Key: "mini_total_events", Title: "Mini total", Type: "number"},
			{Key: "mini_completed_events", Title: "Mini done", Type: "number"},
			{Key: "nano", Title: "NanoAOD"},
			{Key: "nano_status", Title: "Nano status"},
			{Key: "nano_total_events", Title: "Nano total", Type: "number"},
			{Key: "nano_completed_events", Title: "Nano done", Type: "number"},
		}, "dataset", "ascending"),

		preset("rereco_ul", "ReReco UL", []ColumnConfig{
			{Key: "dataset", Title: "Dataset"},
			{Key: "year", Title: "Year"},
			{Key: "events", Title: "Events", Type: "number"},
			{Key: "runs", Title: "Runs", NoSort: true},
			{Key: "twiki_runs", Title: "TWiki runs", NoSort: true},
			{Key: "output", Title: "Output", NoSort: true},
		}, "year", "ascending"),

		preset("transferor_stuckor", "Stuck in staging", []ColumnConfig{
			{Key: "workflow", Title: "Workflow"},
			{Key: "dataset", Title: "Dataset"},
			{Key: "datatype", Title: "Type"},
			{Key: "first_completion", Title: "First completion"},
			{Key: "last_completion", Title: "Last completion"},
			{Key: "time_in_staging", Title: "In staging"},
			{Key: "stuck_time", Title: "Stuck"},
			{Key: "speed", Title: "Speed"},
			{Key: "eta", Title: "ETA"},
			{Key: "rucio_rules", Title: "Rucio rules", NoSort: true},
			{Key: "transfers", Title: "Transfers", Type: "number"},
		}, "transfers", "descending"),

		originalTable("rereco_ul", "ReReco UL datasets"),
		originalTable("rereco_ul_run3", "ReReco Run 3 datasets"),
	}
}
