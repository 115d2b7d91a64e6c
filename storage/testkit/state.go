// Package testkit holds conformance suites shared by storage backends.
package testkit

import (
	"bytes"
	"testing"

	"xdao.co/wfledger/address"
	"xdao.co/wfledger/storage"
)

// NewState constructs a fresh, empty State for a test.
// The returned State MUST be isolated from other tests.
type NewState func(t *testing.T) storage.State

func RunStateConformance(t *testing.T, newState NewState) {
	t.Helper()

	addr := address.StateAddress("workflow-dependency", "wf-conformance")

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		st := newState(t)
		want := []byte(`{"action":"create","workflow_id":"wf-conformance"}`)

		if err := st.Put(addr, want); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := st.Get(addr)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch: got %q want %q", got, want)
		}
	})

	t.Run("PutReplaces", func(t *testing.T) {
		st := newState(t)
		if err := st.Put(addr, []byte("one")); err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		if err := st.Put(addr, []byte("two")); err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		got, err := st.Get(addr)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "two" {
			t.Fatalf("Get after replace: got %q want %q", got, "two")
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		st := newState(t)
		if st.Has(addr) {
			t.Fatalf("Has returned true for missing address")
		}
		if _, err := st.Get(addr); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}
		if err := st.Put(addr, []byte("x")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !st.Has(addr) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		st := newState(t)
		if err := st.Delete(addr); err != nil {
			t.Fatalf("Delete missing: got %v want nil", err)
		}
		if err := st.Put(addr, []byte("x")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := st.Delete(addr); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if st.Has(addr) {
			t.Fatalf("Has returned true after Delete")
		}
		if _, err := st.Get(addr); !storage.IsNotFound(err) {
			t.Fatalf("Get after Delete: got err=%v want ErrNotFound", err)
		}
	})

	t.Run("ReturnedBytesAreCopies", func(t *testing.T) {
		st := newState(t)
		in := []byte("value")
		if err := st.Put(addr, in); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		in[0] = 'X'
		got, err := st.Get(addr)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		got[1] = 'Y'
		again, err := st.Get(addr)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(again) != "value" {
			t.Fatalf("stored value aliased caller memory: %q", again)
		}
	})

	t.Run("RejectInvalidAddress", func(t *testing.T) {
		st := newState(t)
		for _, bad := range []string{"", "abc", addr[:69], addr + "0", "ZZ" + addr[2:]} {
			if err := st.Put(bad, []byte("x")); err != storage.ErrInvalidAddress {
				t.Fatalf("Put(%q): got %v want ErrInvalidAddress", bad, err)
			}
			if err := st.Delete(bad); err != storage.ErrInvalidAddress {
				t.Fatalf("Delete(%q): got %v want ErrInvalidAddress", bad, err)
			}
			if _, err := st.Get(bad); err != storage.ErrInvalidAddress {
				t.Fatalf("Get(%q): got %v want ErrInvalidAddress", bad, err)
			}
			if st.Has(bad) {
				t.Fatalf("Has(%q) returned true", bad)
			}
		}
	})
}
