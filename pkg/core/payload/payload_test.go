package payload

import "testing"

func TestDecodeStandardJSON(t *testing.T) {
	doc := []byte(`{"symbol": "AAPL", "info": {"currency": "USD", "sharesOutstanding": 15000000000}}`)
	p, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.String("symbol") != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", p.String("symbol"))
	}
	shares, ok := p.Info().Float("sharesOutstanding")
	if !ok || shares != 15000000000 {
		t.Errorf("sharesOutstanding = %v (ok=%v)", shares, ok)
	}
}

func TestDecodeRepairsMalformedJSON(t *testing.T) {
	// Trailing comma and single quotes: repairable, should not abort a run.
	doc := []byte(`{'symbol': 'MSFT', 'info': {'currency': 'USD',},}`)
	p, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode should repair malformed JSON: %v", err)
	}
	if p.Info().String("currency") != "USD" {
		t.Errorf("currency = %q, want USD", p.Info().String("currency"))
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("\x00\x01 this is not a document")); err == nil {
		t.Error("expected an error for unparseable input")
	}
}

func TestStatementNavigation(t *testing.T) {
	p := Payload{
		"financials": map[string]interface{}{
			"income_statement": map[string]interface{}{
				"2024-03-31": map[string]interface{}{"Total Revenue": 100.0},
			},
		},
	}

	stmt := p.Statement("financials", "income_statement")
	if len(stmt) != 1 {
		t.Fatalf("expected 1 column, got %d", len(stmt))
	}
	col := stmt.Column("2024-03-31")
	if col["Total Revenue"] != 100.0 {
		t.Errorf("unexpected column contents %v", col)
	}

	// Missing levels degrade to empty, never panic.
	if got := p.Statement("financials_quarterly", "balance_sheet"); len(got) != 0 {
		t.Errorf("missing statement should be empty, got %v", got)
	}
	if got := p.Info(); len(got) != 0 {
		t.Errorf("missing info should be empty, got %v", got)
	}
}

func TestInfoFirstString(t *testing.T) {
	info := Info{"shortName": "Apple Inc."}
	if got := info.FirstString("longName", "shortName"); got != "Apple Inc." {
		t.Errorf("FirstString = %q", got)
	}
	if got := info.FirstString("sector"); got != "" {
		t.Errorf("expected empty string for absent keys, got %q", got)
	}
}
