//go:build cgo

package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"restdoc/internal/config"
	rderrors "restdoc/internal/errors"
	"restdoc/internal/slogutil"
	"restdoc/internal/testutil"
)

var sources = map[string]string{
	"com/shop/api/OrderController.java": `package com.shop.api;

import com.shop.model.Order;
import java.util.List;
import java.util.Map;
import org.springframework.web.bind.annotation.*;

/**
 * Orders placed by customers.
 */
@RestController
@RequestMapping(OrderController.BASE)
public class OrderController {

    static final String BASE = "/orders";

    /**
     * Find an order. Returns 404 when unknown.
     * @param id the order id
     * @return the order
     */
    @GetMapping("/{id}")
    public Order get(@PathVariable("id") long id) {
        return null;
    }

    /** Every order of a page. */
    @GetMapping
    public List<Order> list(@RequestParam(required = false) Integer page) {
        return null;
    }

    /**
     * Search orders by attribute. Tags narrow the result.
     * @param q attribute filters
     */
    @GetMapping("/search")
    public List<Order> search(@RequestParam Map<String, List<String>> q, String... tags) {
        return null;
    }
}
`,
	"com/shop/model/Order.java": `package com.shop.model;

/** A customer order. */
public class Order {
    /** Unique identifier. */
    private long id;
    private Status status;

    public enum Status { OPEN, PAID }
}
`,
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "src")
	testutil.WriteTree(t, root, sources)

	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.SourceRoots = []string{root}
	cfg.APIs = []config.APIConfig{{Filename: "orders", Library: "spring", Locations: []string{"com.shop.api"},
		Format: "yaml", Info: config.InfoConfig{Title: "Orders", Version: "1.0.0"}}}

	report, err := Run(context.Background(), cfg, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	doc := report.Documents[0]
	if doc.Tags != 1 || doc.Operations != 3 || doc.Schemas != 2 {
		t.Errorf("report = %+v", doc)
	}

	data, err := os.ReadFile(doc.Path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"/orders/{id}",
		"summary: Find an order.",
		"/orders/search",
		"summary: Search orders by attribute.",
		"description: attribute filters",
		"description: the order id",
		"description: Orders placed by customers.",
		"description: A customer order.",
		"description: Unique identifier.",
		"$ref: '#/components/schemas/Status'",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("document does not contain %q:\n%s", want, text)
		}
	}
}

func TestRun_ParseError(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "src")
	testutil.WriteTree(t, root, sources)
	testutil.WriteTree(t, root, map[string]string{"Broken.java": "public class Broken {"})

	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.SourceRoots = []string{root}
	cfg.APIs = []config.APIConfig{{Filename: "orders", Library: "spring", Locations: []string{"com.shop"}, Format: "yaml"}}

	_, err := Run(context.Background(), cfg, slogutil.NewDiscardLogger())
	if rderrors.CodeOf(err) != rderrors.SourceParseError {
		t.Errorf("Run() error = %v, want a source parse error", err)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Error("no document should be written when a source fails to parse")
	}
}
