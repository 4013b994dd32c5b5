package main

import (
	"flag"
	"os"

	"github.com/m-lab/go/cloud/bqx"
	"github.com/m-lab/go/rtx"
	benchmodel "github.com/m-lab/rendersim/pkg/bench1/model"
	"github.com/m-lab/rendersim/pkg/render1/model"

	"cloud.google.com/go/bigquery"
)

var (
	render1Schema string
	bench1Schema  string
)

func init() {
	flag.StringVar(&render1Schema, "render1", "/var/spool/datatypes/render1.json", "filename to write render1 schema")
	flag.StringVar(&bench1Schema, "bench1", "/var/spool/datatypes/bench1.json", "filename to write bench1 schema")
}

// writeSchema infers the BigQuery schema of v and writes it to path.
func writeSchema(name string, v any, path string) {
	sch, err := bigquery.InferSchema(v)
	rtx.Must(err, "failed to generate %s schema", name)
	sch = bqx.RemoveRequired(sch)
	b, err := sch.ToJSONFields()
	rtx.Must(err, "failed to marshal %s schema", name)
	err = os.WriteFile(path, b, 0o644)
	rtx.Must(err, "failed to write %s schema", name)
}

func main() {
	flag.Parse()
	// Generate and save schemas for autoloading.
	writeSchema("render1", model.SimulationResult{}, render1Schema)
	writeSchema("bench1", benchmodel.BenchmarkResult{}, bench1Schema)
}
