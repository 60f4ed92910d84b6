package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"
)

func openTestProject(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "project.db"))
	if err != nil {
		t.Fatalf("open failed: %s", err)
	}
	t.Cleanup(func() { Close(db) })
	return db
}

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog file: %s", err)
	}
	return path
}

const knnCatalog = `z_true,z_est
0.10,0.12
0.50,0.48
1.00,1.10
2.00,1.90
`

const bpzCatalog = `z_true,z_est
0.10,0.20
0.50,0.55
1.00,0.95
2.00,2.30
`

func TestIngestAndQuery(t *testing.T) {
	db := openTestProject(t)

	ctx := context.Background()
	meta := Meta{Selection: "gold", Flavor: "baseline", Tag: "test", Algo: "knn"}

	count, err := IngestCSV(ctx, db, writeCatalog(t, "knn.csv", knnCatalog), meta)
	if err != nil {
		t.Fatalf("ingest failed: %s", err)
	}
	if count != 4 {
		t.Errorf("ingested %d rows, want 4", count)
	}

	meta.Algo = "bpz"
	if _, err := IngestCSV(ctx, db, writeCatalog(t, "bpz.csv", bpzCatalog), meta); err != nil {
		t.Fatalf("second ingest failed: %s", err)
	}

	truth, estimates, err := PointEstimates(ctx, db, "gold", "baseline", "test", []string{"all"})
	if err != nil {
		t.Fatalf("query failed: %s", err)
	}

	if len(truth) != 4 || truth[0] != 0.10 || truth[3] != 2.00 {
		t.Errorf("unexpected truth column: %v", truth)
	}
	if len(estimates) != 2 {
		t.Fatalf("got %d algorithms, want 2", len(estimates))
	}
	if estimates["knn"][2] != 1.10 {
		t.Errorf("knn estimates wrong: %v", estimates["knn"])
	}
	if estimates["bpz"][3] != 2.30 {
		t.Errorf("bpz estimates wrong: %v", estimates["bpz"])
	}
}

func TestQueryExplicitAlgos(t *testing.T) {
	db := openTestProject(t)

	ctx := context.Background()
	meta := Meta{Selection: "gold", Flavor: "baseline", Tag: "test", Algo: "knn"}
	if _, err := IngestCSV(ctx, db, writeCatalog(t, "knn.csv", knnCatalog), meta); err != nil {
		t.Fatalf("ingest failed: %s", err)
	}
	meta.Algo = "bpz"
	if _, err := IngestCSV(ctx, db, writeCatalog(t, "bpz.csv", bpzCatalog), meta); err != nil {
		t.Fatalf("ingest failed: %s", err)
	}

	_, estimates, err := PointEstimates(ctx, db, "gold", "baseline", "test", []string{"knn"})
	if err != nil {
		t.Fatalf("query failed: %s", err)
	}
	if len(estimates) != 1 {
		t.Errorf("got %d algorithms, want 1", len(estimates))
	}
	if _, ok := estimates["knn"]; !ok {
		t.Error("knn estimates missing")
	}
}

func TestQueryEmptySelection(t *testing.T) {
	db := openTestProject(t)

	_, _, err := PointEstimates(context.Background(), db, "nope", "baseline", "test", nil)
	if err == nil {
		t.Fatal("expecting error for empty selection")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("error does not name the selection: %s", err)
	}
}

func TestIngestRejectsBadHeader(t *testing.T) {
	db := openTestProject(t)

	path := writeCatalog(t, "bad.csv", "redshift,estimate\n0.1,0.2\n")
	_, err := IngestCSV(context.Background(), db, path, Meta{Algo: "knn"})
	if err == nil {
		t.Fatal("expecting error for missing header columns")
	}
}

func TestIngestRejectsBadValue(t *testing.T) {
	db := openTestProject(t)

	path := writeCatalog(t, "bad.csv", "z_true,z_est\n0.1,not-a-number\n")
	_, err := IngestCSV(context.Background(), db, path, Meta{Algo: "knn"})
	if err == nil {
		t.Fatal("expecting error for malformed value")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error does not carry the line number: %s", err)
	}
}

func TestQueryEmptyFlavorMatchesNothing(t *testing.T) {
	db := openTestProject(t)

	ctx := context.Background()
	meta := Meta{Selection: "gold", Flavor: "baseline", Tag: "test", Algo: "knn"}
	if _, err := IngestCSV(ctx, db, writeCatalog(t, "knn.csv", knnCatalog), meta); err != nil {
		t.Fatalf("ingest failed: %s", err)
	}
	meta.Flavor = "alt"
	if _, err := IngestCSV(ctx, db, writeCatalog(t, "alt.csv", bpzCatalog), meta); err != nil {
		t.Fatalf("ingest failed: %s", err)
	}

	// An empty flavor must filter for flavor="" exactly, never widen the
	// query to every flavor.
	_, _, err := PointEstimates(ctx, db, "gold", "", "test", []string{"knn"})
	if err == nil {
		t.Fatal("expecting error for empty flavor, rows from other flavors leaked in")
	}

	truth, estimates, err := PointEstimates(ctx, db, "gold", "baseline", "test", []string{"knn"})
	if err != nil {
		t.Fatalf("query failed: %s", err)
	}
	if len(truth) != 4 {
		t.Errorf("flavor filter leaked rows, got %d truth values", len(truth))
	}
	if len(estimates["knn"]) != 4 || estimates["knn"][2] != 1.10 {
		t.Errorf("flavor filter leaked rows into estimates: %v", estimates["knn"])
	}
}

func TestIngestRefusesDuplicateKey(t *testing.T) {
	db := openTestProject(t)

	ctx := context.Background()
	meta := Meta{Selection: "gold", Flavor: "baseline", Tag: "test", Algo: "knn"}
	path := writeCatalog(t, "knn.csv", knnCatalog)

	if _, err := IngestCSV(ctx, db, path, meta); err != nil {
		t.Fatalf("ingest failed: %s", err)
	}

	_, err := IngestCSV(ctx, db, path, meta)
	if err == nil {
		t.Fatal("expecting error when re-ingesting an already ingested catalog key")
	}
	if !strings.Contains(err.Error(), "already has ingested data") {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestIngestCatalogParts(t *testing.T) {
	db := openTestProject(t)

	ctx := context.Background()
	meta := Meta{Selection: "gold", Flavor: "baseline", Tag: "test", Algo: "knn"}

	paths := []string{
		writeCatalog(t, "part1.csv", knnCatalog),
		writeCatalog(t, "part2.csv", bpzCatalog),
	}
	count, err := IngestCatalogs(ctx, db, paths, meta)
	if err != nil {
		t.Fatalf("ingest failed: %s", err)
	}
	if count != 8 {
		t.Errorf("ingested %d rows, want 8", count)
	}

	truth, estimates, err := PointEstimates(ctx, db, "gold", "baseline", "test", nil)
	if err != nil {
		t.Fatalf("query failed: %s", err)
	}
	if len(truth) != 8 {
		t.Fatalf("got %d truth values, want 8", len(truth))
	}
	// Object indexes continue across files, so the second part follows the
	// first in order.
	if truth[4] != 0.10 || estimates["knn"][7] != 2.30 {
		t.Errorf("catalog parts out of order: truth=%v knn=%v", truth, estimates["knn"])
	}
}

func TestAlgosListing(t *testing.T) {
	db := openTestProject(t)

	ctx := context.Background()
	meta := Meta{Selection: "gold", Flavor: "baseline", Tag: "test", Algo: "knn"}
	if _, err := IngestCSV(ctx, db, writeCatalog(t, "knn.csv", knnCatalog), meta); err != nil {
		t.Fatalf("ingest failed: %s", err)
	}
	meta.Algo = "bpz"
	if _, err := IngestCSV(ctx, db, writeCatalog(t, "bpz.csv", bpzCatalog), meta); err != nil {
		t.Fatalf("ingest failed: %s", err)
	}

	algos, err := Algos(ctx, db)
	if err != nil {
		t.Fatalf("listing failed: %s", err)
	}
	if len(algos) != 2 || algos[0] != "bpz" || algos[1] != "knn" {
		t.Errorf("unexpected algos: %v", algos)
	}
}
