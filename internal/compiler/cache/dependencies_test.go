package cache

import (
	"reflect"
	"testing"
)

func TestDependencyGraph_SetIncludes(t *testing.T) {
	dg := NewDependencyGraph()

	dg.SetIncludes("/defs/ethernet.xml.in", []string{
		"/defs/ethernet.xml.in",
		"/defs/include/mtu.xml.i",
		"/defs/include/address.xml.i",
	})

	deps := dg.GetDependencies("/defs/ethernet.xml.in")
	want := []string{"/defs/include/mtu.xml.i", "/defs/include/address.xml.i"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("GetDependencies() = %v, want %v", deps, want)
	}

	dependents := dg.GetDependents("/defs/include/mtu.xml.i")
	if len(dependents) != 1 || dependents[0] != "/defs/ethernet.xml.in" {
		t.Errorf("GetDependents() = %v, want [/defs/ethernet.xml.in]", dependents)
	}

	if dg.Size() != 3 {
		t.Errorf("Size() = %d, want 3", dg.Size())
	}
}

func TestDependencyGraph_SetIncludesReplaces(t *testing.T) {
	dg := NewDependencyGraph()

	dg.SetIncludes("/defs/a.xml.in", []string{"/defs/a.xml.in", "/defs/include/old.xml.i"})
	dg.SetIncludes("/defs/a.xml.in", []string{"/defs/a.xml.in", "/defs/include/new.xml.i"})

	if got := dg.GetDependents("/defs/include/old.xml.i"); len(got) != 0 {
		t.Errorf("stale dependent kept: %v", got)
	}
	if got := dg.GetDependents("/defs/include/new.xml.i"); len(got) != 1 {
		t.Errorf("GetDependents() = %v, want one document", got)
	}
}

func TestDependencyGraph_GetTransitiveDependents(t *testing.T) {
	dg := NewDependencyGraph()

	// Fragment chain: mtu.xml.i <- interface-common.xml.i <- {ethernet, bonding}
	dg.AddDependency("/defs/include/interface-common.xml.i", "/defs/include/mtu.xml.i")
	dg.AddDependency("/defs/ethernet.xml.in", "/defs/include/interface-common.xml.i")
	dg.AddDependency("/defs/bonding.xml.in", "/defs/include/interface-common.xml.i")
	dg.AddDependency("/defs/system.xml.in", "/defs/include/version.xml.i")

	got := dg.GetTransitiveDependents("/defs/include/mtu.xml.i")
	want := []string{
		"/defs/bonding.xml.in",
		"/defs/ethernet.xml.in",
		"/defs/include/interface-common.xml.i",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetTransitiveDependents() = %v, want %v", got, want)
	}

	if got := dg.GetTransitiveDependents("/defs/unknown.xml.i"); len(got) != 0 {
		t.Errorf("GetTransitiveDependents() of unknown file = %v, want empty", got)
	}
}

func TestDependencyGraph_CycleTerminates(t *testing.T) {
	dg := NewDependencyGraph()

	dg.AddDependency("/a", "/b")
	dg.AddDependency("/b", "/a")

	got := dg.GetTransitiveDependents("/a")
	if len(got) != 1 || got[0] != "/b" {
		t.Errorf("GetTransitiveDependents() = %v, want [/b]", got)
	}
}

func TestDependencyGraph_RemoveFile(t *testing.T) {
	dg := NewDependencyGraph()

	dg.AddDependency("/defs/a.xml.in", "/defs/include/x.xml.i")
	dg.AddDependency("/defs/b.xml.in", "/defs/include/x.xml.i")

	dg.RemoveFile("/defs/a.xml.in")

	if dg.Size() != 2 {
		t.Errorf("Size() = %d, want 2", dg.Size())
	}
	dependents := dg.GetDependents("/defs/include/x.xml.i")
	if len(dependents) != 1 || dependents[0] != "/defs/b.xml.in" {
		t.Errorf("GetDependents() = %v, want [/defs/b.xml.in]", dependents)
	}
}

func TestDependencyGraph_NoDuplicateDependencies(t *testing.T) {
	dg := NewDependencyGraph()

	dg.AddDependency("/a", "/b")
	dg.AddDependency("/a", "/b")
	dg.SetIncludes("/c", []string{"/c", "/b", "/b"})

	if deps := dg.GetDependencies("/a"); len(deps) != 1 {
		t.Errorf("GetDependencies() = %v, want one entry", deps)
	}
	if deps := dg.GetDependencies("/c"); len(deps) != 1 {
		t.Errorf("GetDependencies() = %v, want one entry", deps)
	}
}

func TestDependencyGraph_Clear(t *testing.T) {
	dg := NewDependencyGraph()
	dg.AddDependency("/a", "/b")

	dg.Clear()

	if dg.Size() != 0 {
		t.Errorf("Size() after Clear() = %d, want 0", dg.Size())
	}
}
