package formpatch

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sanity-io/litter"

	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/patch"
)

func doc(s string) document.Value {
	return document.MustParseJSON(s)
}

// opLines renders a patch one operation per line, with values in canonical
// form so member order does not matter.
func opLines(p patch.Patch) []string {
	lines := make([]string, len(p))
	for i, op := range p {
		if op.Op == patch.OperationTypeRemove {
			lines[i] = fmt.Sprintf("%s %s", op.Op, op.Path)
			continue
		}
		lines[i] = fmt.Sprintf("%s %s %s", op.Op, op.Path, document.Canonical(op.Value))
	}
	return lines
}

func checkPatch(t *testing.T, got patch.Patch, want string) {
	t.Helper()
	wantPatch, err := patch.Parse([]byte(want))
	if err != nil {
		t.Fatalf("bad expected patch: %v", err)
	}
	if diff := cmp.Diff(opLines(wantPatch), opLines(got)); diff != "" {
		t.Errorf("patch mismatch (-want +got):\n%s", diff)
	}
}

// applyBoth applies p with the native applier and with the standard JSON
// Patch implementation and checks that both agree.
func applyBoth(t *testing.T, base document.Value, p patch.Patch) document.Value {
	t.Helper()
	got, err := patch.Apply(base, p)
	if err != nil {
		t.Fatalf("Apply failed: %v\npatch:\n%s", err, p)
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out, err := patch.ApplyJSON(baseJSON, p)
	if err != nil {
		t.Fatalf("ApplyJSON failed: %v\npatch:\n%s", err, p)
	}
	gotJSON, _ := json.Marshal(got)
	if !patch.EqualJSON(out, gotJSON) {
		t.Errorf("appliers disagree:\nnative: %s\njsonpatch: %s", gotJSON, out)
	}
	return got
}

func checkDoc(t *testing.T, got document.Value, want string) {
	t.Helper()
	w := doc(want)
	if !document.Equal(got, w) {
		t.Errorf("document mismatch:\ngot:  %s\nwant: %s\n%s", document.Canonical(got), document.Canonical(w), litter.Sdump(document.Native(got)))
	}
}

func TestCreatePatch_TwoWay(t *testing.T) {
	tests := []struct {
		name  string
		prev  string
		next  string
		patch string
	}{
		{
			"replace scalar",
			`{"a":1}`,
			`{"a":2}`,
			`[{"op":"test","path":"/a","value":1},{"op":"replace","path":"/a","value":2}]`,
		},
		{
			"remove from the middle",
			`{"a":[1,2,3]}`,
			`{"a":[1,3]}`,
			`[{"op":"test","path":"/a","value":[1,2,3]},{"op":"remove","path":"/a/1"}]`,
		},
		{
			"remove first and append",
			`{"a":[1,2,3]}`,
			`{"a":[2,3,4]}`,
			`[{"op":"test","path":"/a","value":[1,2,3]},{"op":"remove","path":"/a/0"},{"op":"add","path":"/a/-","value":4}]`,
		},
		{
			"removals in descending order",
			`{"a":[1,2,3,4,5]}`,
			`{"a":[2,4]}`,
			`[{"op":"test","path":"/a","value":[1,2,3,4,5]},{"op":"remove","path":"/a/4"},{"op":"remove","path":"/a/2"},{"op":"remove","path":"/a/0"}]`,
		},
		{
			"append to empty array",
			`{"a":[]}`,
			`{"a":["x"]}`,
			`[{"op":"test","path":"/a","value":[]},{"op":"add","path":"/a/-","value":"x"}]`,
		},
		{
			"every element differs",
			`{"a":[1,2]}`,
			`{"a":[3,4]}`,
			`[{"op":"test","path":"/a","value":[1,2]},{"op":"replace","path":"/a","value":[3,4]}]`,
		},
		{
			"nested arrays are replaced whole",
			`{"m":[[1,2],[3]]}`,
			`{"m":[[1,2],[4]]}`,
			`[{"op":"test","path":"/m","value":[[1,2],[3]]},{"op":"replace","path":"/m","value":[[1,2],[4]]}]`,
		},
		{
			"new key adds whole subtree",
			`{}`,
			`{"a":{"b":[1,{"c":2}]}}`,
			`[{"op":"add","path":"/a","value":{"b":[1,{"c":2}]}}]`,
		},
		{
			"removed key",
			`{"a":1,"b":{"c":true}}`,
			`{"a":1}`,
			`[{"op":"test","path":"/b","value":{"c":true}},{"op":"remove","path":"/b"}]`,
		},
		{
			"null is not absent",
			`{"a":null,"b":1}`,
			`{"b":1,"c":null}`,
			`[{"op":"add","path":"/c","value":null},{"op":"test","path":"/a","value":null},{"op":"remove","path":"/a"}]`,
		},
		{
			"null replaced by value",
			`{"a":null}`,
			`{"a":0}`,
			`[{"op":"test","path":"/a","value":null},{"op":"replace","path":"/a","value":0}]`,
		},
		{
			"type change",
			`{"a":{"b":1}}`,
			`{"a":[1]}`,
			`[{"op":"test","path":"/a","value":{"b":1}},{"op":"replace","path":"/a","value":[1]}]`,
		},
		{
			"nested object fields",
			`{"a":{"b":{"c":1,"d":2}}}`,
			`{"a":{"b":{"c":1,"d":3}}}`,
			`[{"op":"test","path":"/a/b/d","value":2},{"op":"replace","path":"/a/b/d","value":3}]`,
		},
		{
			"escaped keys",
			`{"a/b":1}`,
			`{"a/b":2}`,
			`[{"op":"test","path":"/a~1b","value":1},{"op":"replace","path":"/a~1b","value":2}]`,
		},
		{
			"plain objects in arrays are compared by position",
			`{"a":[{"x":1},{"x":2}]}`,
			`{"a":[{"x":1}]}`,
			`[{"op":"test","path":"/a","value":[{"x":1},{"x":2}]},{"op":"remove","path":"/a/1"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next := doc(tt.prev), doc(tt.next)
			p := CreatePatch(Args{Prev: prev, Next: next})
			checkPatch(t, p, tt.patch)
			checkDoc(t, applyBoth(t, prev, p), tt.next)
		})
	}
}

func TestCreatePatch_Rows(t *testing.T) {
	tests := []struct {
		name  string
		prev  string
		next  string
		patch string
	}{
		{
			"edit a row field",
			`{"g":[{"altinnRowId":"r1","v":1},{"altinnRowId":"r2","v":2}]}`,
			`{"g":[{"altinnRowId":"r1","v":1},{"altinnRowId":"r2","v":3}]}`,
			`[{"op":"test","path":"/g/1/v","value":2},{"op":"replace","path":"/g/1/v","value":3}]`,
		},
		{
			"remove, edit and append",
			`{"g":[{"altinnRowId":"r1","v":1},{"altinnRowId":"r2","v":2},{"altinnRowId":"r3","v":3}]}`,
			`{"g":[{"altinnRowId":"r1","v":1},{"altinnRowId":"r3","v":30},{"altinnRowId":"r4","v":4}]}`,
			`[
				{"op":"test","path":"/g","value":[{"altinnRowId":"r1","v":1},{"altinnRowId":"r2","v":2},{"altinnRowId":"r3","v":3}]},
				{"op":"test","path":"/g/2/v","value":3},
				{"op":"replace","path":"/g/2/v","value":30},
				{"op":"remove","path":"/g/1"},
				{"op":"add","path":"/g/-","value":{"altinnRowId":"r4","v":4}}
			]`,
		},
		{
			"remove several rows",
			`{"g":[{"altinnRowId":"a"},{"altinnRowId":"b"},{"altinnRowId":"c"},{"altinnRowId":"d"}]}`,
			`{"g":[{"altinnRowId":"b"}]}`,
			`[
				{"op":"test","path":"/g","value":[{"altinnRowId":"a"},{"altinnRowId":"b"},{"altinnRowId":"c"},{"altinnRowId":"d"}]},
				{"op":"remove","path":"/g/3"},
				{"op":"remove","path":"/g/2"},
				{"op":"remove","path":"/g/0"}
			]`,
		},
		{
			"reordered rows are re-appended",
			`{"g":[{"altinnRowId":"a","v":1},{"altinnRowId":"b","v":2}]}`,
			`{"g":[{"altinnRowId":"b","v":2},{"altinnRowId":"a","v":1}]}`,
			`[
				{"op":"test","path":"/g","value":[{"altinnRowId":"a","v":1},{"altinnRowId":"b","v":2}]},
				{"op":"remove","path":"/g/0"},
				{"op":"add","path":"/g/-","value":{"altinnRowId":"a","v":1}}
			]`,
		},
		{
			"first row added to empty group",
			`{"g":[]}`,
			`{"g":[{"altinnRowId":"a","v":1}]}`,
			`[{"op":"test","path":"/g","value":[]},{"op":"add","path":"/g/-","value":{"altinnRowId":"a","v":1}}]`,
		},
		{
			"nested group inside a row",
			`{"g":[{"altinnRowId":"a","n":[{"altinnRowId":"x","v":1}]}]}`,
			`{"g":[{"altinnRowId":"a","n":[{"altinnRowId":"x","v":2},{"altinnRowId":"y","v":3}]}]}`,
			`[
				{"op":"test","path":"/g/0/n","value":[{"altinnRowId":"x","v":1}]},
				{"op":"test","path":"/g/0/n/0/v","value":1},
				{"op":"replace","path":"/g/0/n/0/v","value":2},
				{"op":"add","path":"/g/0/n/-","value":{"altinnRowId":"y","v":3}}
			]`,
		},
		{
			"duplicate identities fall back to positions",
			`{"g":[{"altinnRowId":"a","v":1},{"altinnRowId":"a","v":2}]}`,
			`{"g":[{"altinnRowId":"a","v":1}]}`,
			`[
				{"op":"test","path":"/g","value":[{"altinnRowId":"a","v":1},{"altinnRowId":"a","v":2}]},
				{"op":"remove","path":"/g/1"}
			]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next := doc(tt.prev), doc(tt.next)
			p := CreatePatch(Args{Prev: prev, Next: next})
			checkPatch(t, p, tt.patch)
			checkDoc(t, applyBoth(t, prev, p), tt.next)
		})
	}
}

func TestCreatePatch_ThreeWay(t *testing.T) {
	tests := []struct {
		name    string
		prev    string
		next    string
		current string
		patch   string
		final   string
	}{
		{
			"no local changes",
			`{"a":1,"b":{"c":1}}`,
			`{"a":2,"b":{"c":2}}`,
			`{"a":1,"b":{"c":1}}`,
			`[{"op":"replace","path":"/a","value":2},{"op":"replace","path":"/b/c","value":2}]`,
			`{"a":2,"b":{"c":2}}`,
		},
		{
			"local edit wins over remote edit",
			`{"a":1,"b":1}`,
			`{"a":2,"b":2}`,
			`{"a":3,"b":1}`,
			`[{"op":"replace","path":"/b","value":2}]`,
			`{"a":3,"b":2}`,
		},
		{
			"local edit equal to remote",
			`{"a":1}`,
			`{"a":2}`,
			`{"a":2}`,
			`[]`,
			`{"a":2}`,
		},
		{
			"local-only properties are preserved",
			`{"a":1}`,
			`{"a":2,"s":"server"}`,
			`{"a":1,"l":"local"}`,
			`[{"op":"replace","path":"/a","value":2},{"op":"add","path":"/s","value":"server"}]`,
			`{"a":2,"l":"local","s":"server"}`,
		},
		{
			"remote add does not overwrite local value",
			`{}`,
			`{"a":"server"}`,
			`{"a":"local"}`,
			`[]`,
			`{"a":"local"}`,
		},
		{
			"remote removal",
			`{"a":1,"b":2}`,
			`{"a":1}`,
			`{"a":1,"b":2}`,
			`[{"op":"remove","path":"/b"}]`,
			`{"a":1}`,
		},
		{
			"remote removal of a locally removed key",
			`{"a":1,"b":2}`,
			`{"a":1}`,
			`{"a":1}`,
			`[]`,
			`{"a":1}`,
		},
		{
			"remote edit below a locally removed object",
			`{"o":{"x":1}}`,
			`{"o":{"x":2}}`,
			`{}`,
			`[]`,
			`{}`,
		},
		{
			"sibling fields merge independently",
			`{"o":{"x":1,"y":1}}`,
			`{"o":{"x":2,"y":2}}`,
			`{"o":{"x":5,"y":1}}`,
			`[{"op":"replace","path":"/o/y","value":2}]`,
			`{"o":{"x":5,"y":2}}`,
		},
		{
			"should not apply updates to a row that has been removed in the current model",
			`{"g":[{"altinnRowId":"A","v":1},{"altinnRowId":"B","v":1},{"altinnRowId":"C","v":1}]}`,
			`{"g":[{"altinnRowId":"A","v":1},{"altinnRowId":"B","v":2},{"altinnRowId":"C","v":1}]}`,
			`{"g":[{"altinnRowId":"A","v":1},{"altinnRowId":"C","v":1}]}`,
			`[]`,
			`{"g":[{"altinnRowId":"A","v":1},{"altinnRowId":"C","v":1}]}`,
		},
		{
			"remote row removal still present locally",
			`{"g":[{"altinnRowId":"r1"},{"altinnRowId":"r2"},{"altinnRowId":"r3"}]}`,
			`{"g":[{"altinnRowId":"r2"},{"altinnRowId":"r3"}]}`,
			`{"g":[{"altinnRowId":"r1"},{"altinnRowId":"r3"}]}`,
			`[{"op":"remove","path":"/g/0"}]`,
			`{"g":[{"altinnRowId":"r3"}]}`,
		},
		{
			"remote rows are appended after local rows",
			`{"group":[]}`,
			`{"group":[{"altinnRowId":"S","name":"server"}]}`,
			`{"group":[{"altinnRowId":"C","name":"client"}]}`,
			`[{"op":"add","path":"/group/-","value":{"altinnRowId":"S","name":"server"}}]`,
			`{"group":[{"altinnRowId":"C","name":"client"},{"altinnRowId":"S","name":"server"}]}`,
		},
		{
			"row edits target current indices",
			`{"g":[{"altinnRowId":"A","v":1},{"altinnRowId":"B","v":1}]}`,
			`{"g":[{"altinnRowId":"A","v":1},{"altinnRowId":"B","v":2}]}`,
			`{"g":[{"altinnRowId":"L","v":0},{"altinnRowId":"A","v":1},{"altinnRowId":"B","v":1}]}`,
			`[{"op":"replace","path":"/g/2/v","value":2}]`,
			`{"g":[{"altinnRowId":"L","v":0},{"altinnRowId":"A","v":1},{"altinnRowId":"B","v":2}]}`,
		},
		{
			"removals use current indices in descending order",
			`{"g":[{"altinnRowId":"A"},{"altinnRowId":"B"},{"altinnRowId":"C"}]}`,
			`{"g":[{"altinnRowId":"B"}]}`,
			`{"g":[{"altinnRowId":"C"},{"altinnRowId":"A"},{"altinnRowId":"L"}]}`,
			`[{"op":"remove","path":"/g/1"},{"op":"remove","path":"/g/0"}]`,
			`{"g":[{"altinnRowId":"L"}]}`,
		},
		{
			"backend updates only add new properties",
			`{"g":[]}`,
			`{"g":[{"altinnRowId":"r1","name":"local","prefill":"server","nested":{"a":1,"b":2}}]}`,
			`{"g":[{"altinnRowId":"r1","name":"edited","nested":{"a":5}}]}`,
			`[{"op":"add","path":"/g/0/prefill","value":"server"},{"op":"add","path":"/g/0/nested/b","value":2}]`,
			`{"g":[{"altinnRowId":"r1","name":"edited","nested":{"a":5,"b":2},"prefill":"server"}]}`,
		},
		{
			"calculated field in a row with a local nested group",
			`{"g":[{"altinnRowId":"r1","a":"x"}]}`,
			`{"g":[{"altinnRowId":"r1","a":"x","calc":"X"}]}`,
			`{"g":[{"altinnRowId":"r1","a":"x","sub":[{"altinnRowId":"s1"}]}]}`,
			`[{"op":"add","path":"/g/0/calc","value":"X"}]`,
			`{"g":[{"altinnRowId":"r1","a":"x","calc":"X","sub":[{"altinnRowId":"s1"}]}]}`,
		},
		{
			"remote row reorder with unchanged current",
			`{"g":[{"altinnRowId":"a","v":1},{"altinnRowId":"b","v":2}]}`,
			`{"g":[{"altinnRowId":"b","v":2},{"altinnRowId":"a","v":1}]}`,
			`{"g":[{"altinnRowId":"a","v":1},{"altinnRowId":"b","v":2}]}`,
			`[{"op":"remove","path":"/g/0"},{"op":"add","path":"/g/-","value":{"altinnRowId":"a","v":1}}]`,
			`{"g":[{"altinnRowId":"b","v":2},{"altinnRowId":"a","v":1}]}`,
		},
		{
			"remote row reorder keeps local edits of the moved row",
			`{"g":[{"altinnRowId":"a","v":1},{"altinnRowId":"b","v":1}]}`,
			`{"g":[{"altinnRowId":"b","v":1},{"altinnRowId":"a","v":2,"w":1}]}`,
			`{"g":[{"altinnRowId":"a","v":5},{"altinnRowId":"b","v":1}]}`,
			`[{"op":"remove","path":"/g/0"},{"op":"add","path":"/g/-","value":{"altinnRowId":"a","v":5,"w":1}}]`,
			`{"g":[{"altinnRowId":"b","v":1},{"altinnRowId":"a","v":5,"w":1}]}`,
		},
		{
			"local row order wins over remote reorder",
			`{"g":[{"altinnRowId":"a","v":1},{"altinnRowId":"b","v":1}]}`,
			`{"g":[{"altinnRowId":"b","v":1},{"altinnRowId":"a","v":2}]}`,
			`{"g":[{"altinnRowId":"b","v":1},{"altinnRowId":"a","v":1}]}`,
			`[{"op":"replace","path":"/g/1/v","value":2}]`,
			`{"g":[{"altinnRowId":"b","v":1},{"altinnRowId":"a","v":2}]}`,
		},
		{
			"positional array changed locally",
			`{"a":[1,2]}`,
			`{"a":[1,2,3]}`,
			`{"a":[1]}`,
			`[]`,
			`{"a":[1]}`,
		},
		{
			"positional array unchanged locally",
			`{"a":[1,2,3]}`,
			`{"a":[2,3,4]}`,
			`{"a":[1,2,3],"b":true}`,
			`[{"op":"remove","path":"/a/0"},{"op":"add","path":"/a/-","value":4}]`,
			`{"a":[2,3,4],"b":true}`,
		},
		{
			"container retyped locally",
			`{"o":{"x":1}}`,
			`{"o":{"x":2}}`,
			`{"o":"text"}`,
			`[]`,
			`{"o":"text"}`,
		},
		{
			"rows added on both sides merge into local rows",
			`{}`,
			`{"g":[{"altinnRowId":"r1","a":1},{"altinnRowId":"r2","a":2}]}`,
			`{"g":[{"altinnRowId":"r1","b":1}]}`,
			`[{"op":"add","path":"/g/0/a","value":1},{"op":"add","path":"/g/-","value":{"altinnRowId":"r2","a":2}}]`,
			`{"g":[{"altinnRowId":"r1","b":1,"a":1},{"altinnRowId":"r2","a":2}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next, current := doc(tt.prev), doc(tt.next), doc(tt.current)
			p := CreatePatch(Args{Prev: prev, Next: next, Current: current})
			checkPatch(t, p, tt.patch)
			checkDoc(t, applyBoth(t, current, p), tt.final)
		})
	}
}

func TestCreatePatch_NoOp(t *testing.T) {
	docs := []string{
		`{}`,
		`{"a":null}`,
		`{"a":[1,[2]],"b":{"c":"x"}}`,
		`{"g":[{"altinnRowId":"r1","v":[1,2]}]}`,
		`[]`,
		`"scalar"`,
	}
	for _, d := range docs {
		if p := CreatePatch(Args{Prev: doc(d), Next: doc(d)}); len(p) != 0 {
			t.Errorf("%s: expected empty patch, got:\n%s", d, p)
		}
		// Separately decoded documents must compare equal too.
		if p := CreatePatch(Args{Prev: doc(d), Next: doc(d), Current: doc(d)}); len(p) != 0 {
			t.Errorf("%s: expected empty three-way patch, got:\n%s", d, p)
		}
	}

	data, err := json.Marshal(CreatePatch(Args{Prev: doc(`{"a":1}`), Next: doc(`{"a":1}`)}))
	if err != nil || string(data) != "[]" {
		t.Errorf("empty patch should encode as [], got %s (%v)", data, err)
	}
}

func TestCreatePatch_Root(t *testing.T) {
	p := CreatePatch(Args{Prev: doc(`{"a":1}`), Next: doc(`[1]`)})
	checkPatch(t, p, `[{"op":"test","path":"","value":{"a":1}},{"op":"replace","path":"","value":[1]}]`)

	p = CreatePatch(Args{Prev: nil, Next: doc(`{"a":1}`)})
	checkPatch(t, p, `[{"op":"add","path":"","value":{"a":1}}]`)

	p = CreatePatch(Args{Prev: nil, Next: doc(`{"a":1,"b":2}`), Current: doc(`{"a":5}`)})
	checkPatch(t, p, `[{"op":"add","path":"/b","value":2}]`)
}

func TestCreatePatch_DoesNotModifyInputs(t *testing.T) {
	prev := doc(`{"a":[1,2,3],"g":[{"altinnRowId":"r1","v":1},{"altinnRowId":"r2","v":2}],"o":{"x":1}}`)
	next := doc(`{"a":[2,3,4],"g":[{"altinnRowId":"r2","v":3},{"altinnRowId":"r3","v":4}],"n":true}`)
	current := doc(`{"a":[1,2,3],"g":[{"altinnRowId":"r1","v":1},{"altinnRowId":"r2","v":2},{"altinnRowId":"l1"}],"o":{"x":9}}`)

	before := []string{document.Canonical(prev), document.Canonical(next), document.Canonical(current)}

	p := CreatePatch(Args{Prev: prev, Next: next})
	applyBoth(t, prev, p)
	p = CreatePatch(Args{Prev: prev, Next: next, Current: current})
	applyBoth(t, current, p)

	after := []string{document.Canonical(prev), document.Canonical(next), document.Canonical(current)}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("inputs modified (-before +after):\n%s", diff)
	}
}

func TestCreatePatch_ThreeWayHasNoTests(t *testing.T) {
	prev := doc(`{"a":1,"l":[1,2],"g":[{"altinnRowId":"r1","v":1}]}`)
	next := doc(`{"a":2,"l":[2],"g":[{"altinnRowId":"r1","v":2}],"x":{}}`)
	p := CreatePatch(Args{Prev: prev, Next: next, Current: prev})
	if len(p) == 0 {
		t.Fatal("expected operations")
	}
	for _, op := range p {
		if op.Op == patch.OperationTypeTest {
			t.Errorf("unexpected test operation: %s", op)
		}
	}
	checkDoc(t, applyBoth(t, prev, p), `{"a":2,"l":[2],"g":[{"altinnRowId":"r1","v":2}],"x":{}}`)
}
