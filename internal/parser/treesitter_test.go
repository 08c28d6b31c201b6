//go:build cgo

package parser

import (
	"context"
	"testing"
)

func findSymbol(symbols []Symbol, name string) *Symbol {
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i]
		}
	}
	return nil
}

func TestParsePython(t *testing.T) {
	source := []byte(`import os
from collections import OrderedDict, defaultdict as dd

def main():
    helper()
    obj.process()

def _helper():
    pass

class Engine:
    def run(self):
        return self.step()

    def _step(self):
        pass
`)

	p, err := NewParser(LangPython)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	result, err := p.Parse(context.Background(), "engine.py", source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	mainSym := findSymbol(result.Symbols, "main")
	if mainSym == nil {
		t.Fatal("expected symbol main")
	}
	if mainSym.Kind != "function" {
		t.Errorf("main kind = %q, want function", mainSym.Kind)
	}
	if !mainSym.IsExported {
		t.Error("main should be exported")
	}

	helper := findSymbol(result.Symbols, "_helper")
	if helper == nil {
		t.Fatal("expected symbol _helper")
	}
	if helper.IsExported {
		t.Error("_helper should not be exported")
	}

	engine := findSymbol(result.Symbols, "Engine")
	if engine == nil {
		t.Fatal("expected symbol Engine")
	}
	if engine.Kind != "class" {
		t.Errorf("Engine kind = %q, want class", engine.Kind)
	}

	run := findSymbol(result.Symbols, "Engine.run")
	if run == nil {
		t.Fatal("expected method Engine.run")
	}
	if run.Kind != "method" || run.Container != "Engine" {
		t.Errorf("Engine.run = kind %q container %q", run.Kind, run.Container)
	}

	// Methods must not also surface as bare top-level functions
	if findSymbol(result.Symbols, "run") != nil {
		t.Error("method run leaked as top-level function")
	}

	if len(result.Imports) != 2 {
		t.Errorf("expected 2 import statements, got %d: %v", len(result.Imports), result.Imports)
	}

	foundCall := false
	for _, c := range result.Calls {
		if c == "helper" {
			foundCall = true
		}
	}
	if !foundCall {
		t.Errorf("expected call to helper, got %v", result.Calls)
	}
}

func TestParsePythonDunderIsPublic(t *testing.T) {
	source := []byte("class Box:\n    def __init__(self):\n        pass\n")

	p, err := NewParser(LangPython)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	result, err := p.Parse(context.Background(), "box.py", source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	init := findSymbol(result.Symbols, "Box.__init__")
	if init == nil {
		t.Fatal("expected Box.__init__")
	}
	if !init.IsExported {
		t.Error("dunder methods should count as exported")
	}
}

func TestParseJavaScript(t *testing.T) {
	source := []byte(`import { render } from "./render.js";

export function start() {
  render();
}

function internal() {}

class Widget {
  draw() {
    this.paint();
  }
}
`)

	p, err := NewParser(LangJavaScript)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	result, err := p.Parse(context.Background(), "app.js", source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	start := findSymbol(result.Symbols, "start")
	if start == nil {
		t.Fatal("expected symbol start")
	}
	if !start.IsExported {
		t.Error("start is wrapped in export, should be exported")
	}

	draw := findSymbol(result.Symbols, "Widget.draw")
	if draw == nil {
		t.Fatal("expected method Widget.draw")
	}
	if draw.Kind != "method" {
		t.Errorf("draw kind = %q, want method", draw.Kind)
	}

	if len(result.Imports) != 1 {
		t.Errorf("expected 1 import, got %d", len(result.Imports))
	}
}

func TestParseGo(t *testing.T) {
	source := []byte(`package widget

import "fmt"

type Widget struct{}

func (w *Widget) Draw() {
	fmt.Println("draw")
}

func New() *Widget {
	return &Widget{}
}

func internal() {}
`)

	p, err := NewParser(LangGo)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	result, err := p.Parse(context.Background(), "widget.go", source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	w := findSymbol(result.Symbols, "Widget")
	if w == nil {
		t.Fatal("expected type Widget")
	}
	if w.Kind != "class" {
		t.Errorf("Widget kind = %q, want class", w.Kind)
	}

	draw := findSymbol(result.Symbols, "Widget.Draw")
	if draw == nil {
		t.Fatal("expected method Widget.Draw")
	}
	if !draw.IsExported {
		t.Error("Draw should be exported")
	}

	internal := findSymbol(result.Symbols, "internal")
	if internal == nil {
		t.Fatal("expected function internal")
	}
	if internal.IsExported {
		t.Error("internal should not be exported")
	}
}

func TestParseSignatureFirstLine(t *testing.T) {
	source := []byte("def compute(a, b):\n    return a + b\n")

	p, err := NewParser(LangPython)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	result, err := p.Parse(context.Background(), "m.py", source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	sym := findSymbol(result.Symbols, "compute")
	if sym == nil {
		t.Fatal("expected symbol compute")
	}
	if sym.Signature != "def compute(a, b)" {
		t.Errorf("Signature = %q", sym.Signature)
	}
	if sym.Line != 1 {
		t.Errorf("Line = %d, want 1", sym.Line)
	}
}

func TestParseDeduplicatesCalls(t *testing.T) {
	source := []byte(`def main():
    helper()
    helper()
    helper()
    other()
`)
	p, err := NewParser(LangPython)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	result, err := p.Parse(context.Background(), "main.py", source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	counts := make(map[string]int)
	for _, c := range result.Calls {
		counts[c]++
	}
	if counts["helper"] != 1 {
		t.Errorf("helper recorded %d times, want 1", counts["helper"])
	}
	if counts["other"] != 1 {
		t.Errorf("other recorded %d times, want 1", counts["other"])
	}
}

func TestParseEmptySource(t *testing.T) {
	p, err := NewParser(LangPython)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	result, err := p.Parse(context.Background(), "empty.py", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Symbols) != 0 || len(result.Imports) != 0 || len(result.Calls) != 0 {
		t.Errorf("empty source should produce empty result, got %+v", result)
	}
}
