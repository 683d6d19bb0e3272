// Command regroup splits raw analysis workbooks into per-category sheets and
// consolidates the results into one database workbook.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/coachdesk/playlog/internal/regroup"
)

func main() {
	in := flag.String("in", "excel_longo", "directory with raw analysis workbooks")
	out := flag.String("out", "excel_procesado", "directory for the regrouped workbooks")
	db := flag.String("db", "BD_longo.xlsx", "consolidated workbook path, empty skips consolidation")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.WithError(err).Fatal("create output directory")
	}
	entries, err := os.ReadDir(*in)
	if err != nil {
		log.WithError(err).Fatal("read input directory")
	}

	var processed []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".xlsx") {
			continue
		}
		src := filepath.Join(*in, name)
		dst := filepath.Join(*out, "procesado_"+name)
		groups, err := regroup.RegroupFile(src, dst)
		if err != nil {
			log.WithError(err).WithField("file", name).Error("regroup failed")
			continue
		}
		if groups == 0 {
			log.WithField("file", name).Warn("no recognized sections")
			continue
		}
		log.WithFields(logrus.Fields{"file": name, "groups": groups}).Info("workbook regrouped")
		processed = append(processed, dst)
	}

	if *db == "" || len(processed) == 0 {
		return
	}
	if err := regroup.Consolidate(processed, *db); err != nil {
		log.WithError(err).Fatal("consolidate")
	}
	log.WithFields(logrus.Fields{"files": len(processed), "out": *db}).Info("consolidated workbook written")
}
