package vcf

import (
	"testing"
)

func readOne(t *testing.T, columns ...string) *Record {
	t.Helper()
	r := mustReader(t, testVCF(record(columns...)))
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected a record, got nil")
	}
	return rec
}

func TestRecord_InfoStrings(t *testing.T) {
	rec := readOne(t, "1", "100", ".", "A", "T", ".", "PASS",
		"NS=3;CLNSIG=Pathogenic,Benign;DB")

	values, ok := rec.InfoStrings("CLNSIG")
	if !ok {
		t.Fatal("Expected CLNSIG to be present")
	}
	if len(values) != 2 || values[0] != "Pathogenic" || values[1] != "Benign" {
		t.Errorf("Unexpected CLNSIG values: %v", values)
	}

	if _, ok := rec.InfoStrings("AF"); ok {
		t.Error("Expected AF to be absent")
	}

	// Flag-type field: present but without values
	if !rec.HasInfo("DB") {
		t.Error("Expected DB flag to be present")
	}
	values, ok = rec.InfoStrings("DB")
	if !ok || values != nil {
		t.Errorf("Expected flag to be present with no values, got %v", values)
	}
}

func TestRecord_InfoFloats(t *testing.T) {
	rec := readOne(t, "1", "100", ".", "A", "T,G", ".", "PASS", "AF=0.5,0.25")

	values, err := rec.InfoFloats("AF")
	if err != nil {
		t.Fatalf("InfoFloats failed: %v", err)
	}
	if len(values) != 2 || values[0] != 0.5 || values[1] != 0.25 {
		t.Errorf("Unexpected AF values: %v", values)
	}

	// Absent key yields no values and no error
	values, err = rec.InfoFloats("MAF")
	if err != nil || values != nil {
		t.Errorf("Expected nil, nil for absent key, got %v, %v", values, err)
	}
}

func TestRecord_InfoFloats_Invalid(t *testing.T) {
	rec := readOne(t, "1", "100", ".", "A", "T", ".", "PASS", "AF=high")

	if _, err := rec.InfoFloats("AF"); err == nil {
		t.Fatal("Expected error for non-numeric AF")
	}
}

func TestRecord_InfoInt(t *testing.T) {
	rec := readOne(t, "1", "100", ".", "A", "T", ".", "PASS", "NS=42")

	n, ok, err := rec.InfoInt("NS")
	if err != nil {
		t.Fatalf("InfoInt failed: %v", err)
	}
	if !ok || n != 42 {
		t.Errorf("Expected 42, got %d (ok=%v)", n, ok)
	}

	_, ok, err = rec.InfoInt("AC")
	if err != nil {
		t.Fatalf("InfoInt failed: %v", err)
	}
	if ok {
		t.Error("Expected absent key to report not ok")
	}
}

func TestRecord_FormatValues(t *testing.T) {
	rec := readOne(t, "1", "100", ".", "A", "T", ".", "PASS", "NS=3",
		"GT:DP:GQ", "0/1:10:99", "1/1:.:80", "0/0:30")

	dp := rec.FormatValues("DP")
	if len(dp) != 3 {
		t.Fatalf("Expected one DP value per sample, got %v", dp)
	}
	if dp[0] != "10" || dp[1] != "." {
		t.Errorf("Unexpected DP values: %v", dp)
	}
	// third sample column has no GQ entry at all
	gq := rec.FormatValues("GQ")
	if gq[2] != "." {
		t.Errorf("Expected missing GQ for short sample column, got %q", gq[2])
	}

	if values := rec.FormatValues("AD"); values != nil {
		t.Errorf("Expected nil for tag missing from FORMAT, got %v", values)
	}
}

func TestRecord_FormatValues_FirstSubValue(t *testing.T) {
	rec := readOne(t, "1", "100", ".", "A", "T", ".", "PASS", "NS=3",
		"GT:AD", "0/1:10,5", "1/1:20,2", "0/0:7,0")

	ad := rec.FormatValues("AD")
	if ad[0] != "10" || ad[1] != "20" || ad[2] != "7" {
		t.Errorf("Expected first sub-values, got %v", ad)
	}
}

func TestRecord_MissingAlleles(t *testing.T) {
	rec := readOne(t, "1", "100", ".", ".", ".", ".", "PASS", "NS=3")
	if len(rec.Alleles) != 0 {
		t.Errorf("Expected no alleles, got %v", rec.Alleles)
	}
}

func TestRecord_NoAltAllele(t *testing.T) {
	rec := readOne(t, "1", "100", ".", "A", ".", ".", "PASS", "NS=3")
	if len(rec.Alleles) != 1 || rec.Alleles[0] != "A" {
		t.Errorf("Expected only REF allele, got %v", rec.Alleles)
	}
}
