package gemini

import "testing"

func okHandler(name string) Handler {
	return HandlerFunc(func(ctx *RequestContext) ResponseModel {
		return Success(name)
	})
}

func TestRouterAt(t *testing.T) {
	rt := NewRouter()
	must := func(err error) {
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	must(rt.Insert("/", okHandler("root")))
	must(rt.Insert("/a", okHandler("a")))
	must(rt.Insert("/names/:first/:last", okHandler("names")))
	must(rt.Insert("/a/:id", okHandler("a-id")))

	tests := []struct {
		Path    string
		Matched bool
		Name    string
		Params  map[string]string
	}{
		{Path: "/", Matched: true, Name: "root"},
		{Path: "/a", Matched: true, Name: "a"},
		{Path: "/a/42", Matched: true, Name: "a-id", Params: map[string]string{"id": "42"}},
		{Path: "/names/john/doe", Matched: true, Name: "names", Params: map[string]string{"first": "john", "last": "doe"}},
		{Path: "/missing", Matched: false},
		{Path: "", Matched: true, Name: "root"},
	}

	for _, test := range tests {
		t.Logf("%q", test.Path)
		h, params, ok := rt.At(test.Path)
		if ok != test.Matched {
			t.Errorf("%q: expected matched=%v, got %v", test.Path, test.Matched, ok)
			continue
		}
		if !ok {
			continue
		}
		resp := h.ServeGemini(&RequestContext{})
		if string(resp.Body) != test.Name {
			t.Errorf("%q: expected handler %q, got %q", test.Path, test.Name, resp.Body)
		}
		for k, v := range test.Params {
			if params[k] != v {
				t.Errorf("%q: expected param %s=%s, got %s", test.Path, k, v, params[k])
			}
		}
	}
}

func TestRouterInsertConflict(t *testing.T) {
	rt := NewRouter()
	if err := rt.Insert("/a", okHandler("a")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := rt.Insert("/a", okHandler("a-again")); err == nil {
		t.Error("expected conflict error for duplicate pattern")
	}
	if err := rt.Insert("/b/:x", okHandler("x")); err != nil {
		t.Fatalf("insert :x: %v", err)
	}
	if err := rt.Insert("/b/:y", okHandler("y")); err == nil {
		t.Error("expected conflict error for mismatched param name at same position")
	}
}

func TestRouterFixPath(t *testing.T) {
	rt := NewRouter()
	if err := rt.Insert("/Status", okHandler("status")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := rt.Insert("/strict", okHandler("strict"), WithExactPath()); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := rt.Insert("/About", okHandler("about")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tests := []struct {
		Path    string
		Matched bool
		Fixed   string
	}{
		{Path: "/status", Matched: true, Fixed: "/Status"},
		{Path: "/STATUS", Matched: true, Fixed: "/Status"},
		{Path: "/Strict", Matched: false},
		{Path: "/strict", Matched: true, Fixed: "/strict"},
		{Path: "/about/", Matched: true, Fixed: "/About"},
	}

	for _, test := range tests {
		t.Logf("%q", test.Path)
		fixed, ok := rt.FixPath(test.Path)
		if ok != test.Matched {
			t.Errorf("%q: expected matched=%v, got %v", test.Path, test.Matched, ok)
			continue
		}
		if ok && fixed != test.Fixed {
			t.Errorf("%q: expected fixed path %q, got %q", test.Path, test.Fixed, fixed)
		}
	}
}
