// Command osrm-datastore runs the PublicationController: it materializes
// a dataset's regions into shared memory (run) and can report the
// region registry's current contents (list).
package main

import (
	"os"

	"github.com/visp-2/osrm-backend/cmd/osrm-datastore/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
