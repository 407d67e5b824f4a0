// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// NetID identifies a net within a circuit definition. Net identifiers are
// assigned in ascending location order and are stable for a given circuit
// layout.
//
type NetID int

// an attachment identifies a port of a component in a circuit. comp is -1 for
// values set from outside the circuit.
type attachment struct {
	comp, port int
}

var external = attachment{-1, -1}

type net struct {
	locs   []Location
	width  int
	attach []attachment // sorted by component, then port
	pull   Value        // zero Value if not pulled
	// threads joined by splitters: the thread of each bit and the nets
	// sharing them, this one included. Both nil for plain nets.
	threads []int
	group   []NetID
}

// a netBit is one bit of a net.
type netBit struct {
	net NetID
	bit int
}

// netlist is the static connectivity of a circuit definition.
type netlist struct {
	nets    []net
	byLoc   map[Location]NetID
	ports   [][]Port
	portNet [][]NetID
	index   map[Component]int
	clocks  []int
	subs    []int
	threads [][]netBit // members of each thread
}

func newNetlist(c *Circuit) (*netlist, error) {
	nl := &netlist{
		byLoc:   make(map[Location]NetID),
		ports:   make([][]Port, len(c.comps)),
		portNet: make([][]NetID, len(c.comps)),
		index:   make(map[Component]int, len(c.comps)),
	}

	points := mapset.NewThreadUnsafeSet[Location]()
	tunnels := make(map[string][]Location)
	var labels []string
	var splitters, pulls []int
	for i, cc := range c.comps {
		if cc == nil {
			return nil, errors.Errorf("nil component at index %d", i)
		}
		if j, ok := nl.index[cc]; ok {
			return nil, errors.Errorf("component %s added twice (index %d and %d)", cc.Name(), j, i)
		}
		nl.index[cc] = i
		ps := cc.Ports()
		for pi, p := range ps {
			if p.Width < 1 || p.Width > MaxWidth {
				return nil, errors.Wrapf(ErrBadPort, "%s port %d: width %d out of range", cc.Name(), pi, p.Width)
			}
			points.Add(p.Loc)
		}
		nl.ports[i] = ps
		if k, ok := cc.(Clock); ok && k.TickSensitive() {
			nl.clocks = append(nl.clocks, i)
		}
		switch cc := cc.(type) {
		case *Subcircuit:
			nl.subs = append(nl.subs, i)
		case *Tunnel:
			if _, ok := tunnels[cc.label]; !ok {
				labels = append(labels, cc.label)
			}
			tunnels[cc.label] = append(tunnels[cc.label], cc.port[0].Loc)
		case *Splitter:
			splitters = append(splitters, i)
		case *PullResistor:
			pulls = append(pulls, i)
		}
	}
	for _, w := range c.wires {
		if !w.valid() {
			return nil, errors.Errorf("wire %v-%v is not axis-aligned", w.A, w.B)
		}
		points.Add(w.A)
		points.Add(w.B)
	}

	sorted := points.ToSlice()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })

	// adjacency: every point lying on a wire connects to that wire's
	// endpoints, which covers T-junctions.
	adj := make(map[Location][]Location)
	for _, w := range c.wires {
		for _, p := range sorted {
			if p != w.A && p != w.B && w.contains(p) {
				adj[p] = append(adj[p], w.A, w.B)
				adj[w.A] = append(adj[w.A], p)
				adj[w.B] = append(adj[w.B], p)
			}
		}
		adj[w.A] = append(adj[w.A], w.B)
		adj[w.B] = append(adj[w.B], w.A)
	}
	for _, lbl := range labels {
		ls := tunnels[lbl]
		for _, l := range ls[1:] {
			adj[ls[0]] = append(adj[ls[0]], l)
			adj[l] = append(adj[l], ls[0])
		}
	}

	visited := mapset.NewThreadUnsafeSet[Location]()
	for _, p := range sorted {
		if visited.Contains(p) {
			continue
		}
		id := NetID(len(nl.nets))
		var locs []Location
		stack := []Location{p}
		visited.Add(p)
		for len(stack) > 0 {
			l := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			locs = append(locs, l)
			nl.byLoc[l] = id
			for _, n := range adj[l] {
				if !visited.Contains(n) {
					visited.Add(n)
					stack = append(stack, n)
				}
			}
		}
		sort.Slice(locs, func(i, j int) bool { return locs[i].less(locs[j]) })
		nl.nets = append(nl.nets, net{locs: locs})
	}

	for i, ps := range nl.ports {
		nl.portNet[i] = make([]NetID, len(ps))
		for pi, p := range ps {
			id := nl.byLoc[p.Loc]
			nl.portNet[i][pi] = id
			n := &nl.nets[id]
			switch {
			case n.width == 0:
				n.width = p.Width
			case n.width != p.Width:
				return nil, errors.Wrapf(&WidthError{Op: "net at " + n.locs[0].String(), Want: n.width, Got: p.Width},
					"%s port %d", c.comps[i].Name(), pi)
			}
			if _, ok := c.comps[i].(connector); !ok {
				n.attach = append(n.attach, attachment{i, pi})
			}
		}
	}
	for i := range nl.nets {
		if nl.nets[i].width == 0 {
			nl.nets[i].width = 1
		}
	}
	for _, ci := range pulls {
		n := &nl.nets[nl.portNet[ci][0]]
		v := c.comps[ci].(*PullResistor).value()
		if n.pull.Width() == 0 {
			n.pull = v
		} else {
			n.pull = n.pull.Combine(v)
		}
	}
	if len(splitters) > 0 {
		nl.thread(c, splitters)
	}
	return nl, nil
}

// thread joins the bits of the nets connected by splitters into threads.
// Thread and group identifiers follow net order.
func (nl *netlist) thread(c *Circuit, splitters []int) {
	base := make([]int, len(nl.nets)+1)
	for i := range nl.nets {
		base[i+1] = base[i] + nl.nets[i].width
	}
	bits := newUnionFind(base[len(nl.nets)])
	split := make([]bool, len(nl.nets))
	for _, ci := range splitters {
		sp := c.comps[ci].(*Splitter)
		bus := nl.portNet[ci][0]
		split[bus] = true
		for k, e := range sp.ends {
			en := nl.portNet[ci][k+1]
			split[en] = true
			for j, b := range e.Bits {
				bits.union(base[bus]+b, base[en]+j)
			}
		}
	}

	ids := make(map[int]int)
	nets := newUnionFind(len(nl.nets))
	for i := range nl.nets {
		if !split[i] {
			continue
		}
		n := &nl.nets[i]
		n.threads = make([]int, n.width)
		for b := range n.threads {
			r := bits.find(base[i] + b)
			t, ok := ids[r]
			if !ok {
				t = len(nl.threads)
				ids[r] = t
				nl.threads = append(nl.threads, nil)
			} else {
				nets.union(int(nl.threads[t][0].net), i)
			}
			n.threads[b] = t
			nl.threads[t] = append(nl.threads[t], netBit{NetID(i), b})
		}
	}

	groups := make(map[int][]NetID)
	for i := range nl.nets {
		if split[i] {
			r := nets.find(i)
			groups[r] = append(groups[r], NetID(i))
		}
	}
	for i := range nl.nets {
		if split[i] {
			nl.nets[i].group = groups[nets.find(i)]
		}
	}
}

type unionFind []int

func newUnionFind(n int) unionFind {
	u := make(unionFind, n)
	for i := range u {
		u[i] = i
	}
	return u
}

func (u unionFind) find(x int) int {
	for u[x] != x {
		u[x] = u[u[x]]
		x = u[x]
	}
	return x
}

// union merges the sets of a and b. The smallest element is the root.
func (u unionFind) union(a, b int) {
	a, b = u.find(a), u.find(b)
	if a > b {
		a, b = b, a
	}
	u[b] = a
}

func (nl *netlist) port(a attachment) Port {
	return nl.ports[a.comp][a.port]
}

// a drive is the value currently asserted on a net by one source.
type drive struct {
	src  attachment
	excl bool
	val  Value
}

// resolve combines the values of all drivers of a net. Bits asserted by more
// than one driver where any of them is exclusive are set to Error. Bits left
// Unknown take the value of pull, unless pull is the zero Value.
func resolve(width int, pull Value, drives []drive) Value {
	v := UnknownValue(width)
	m := mask(width)
	var seen, multi, excl uint32
	for _, d := range drives {
		active := m &^ d.val.unk
		multi |= seen & active
		seen |= active
		if d.excl {
			excl |= active
		}
		v = v.Combine(d.val)
	}
	if e := multi & excl; e != 0 {
		v = makeValue(width, v.err|e, v.unk, v.val)
	}
	if pull.width != 0 {
		u := v.unk &^ pull.unk
		v = makeValue(width, v.err|pull.err&u, v.unk&^u, v.val|pull.val&u)
	}
	return v
}
