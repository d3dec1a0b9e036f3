package net

import (
	"log"
	"net"
	"net/http"
	"sync"
)

// Peers tracks the editors currently connected to a store server.
type Peers struct {
	peers map[string]net.Conn
	mu    sync.RWMutex
}

func NewPeers() *Peers {
	return &Peers{
		peers: make(map[string]net.Conn),
	}
}

// Track follows connection state changes. It is meant to be installed as
// http.Server.ConnState.
func (p *Peers) Track(conn net.Conn, state http.ConnState) {
	addr := conn.RemoteAddr().String()
	switch state {
	case http.StateNew:
		p.mu.Lock()
		p.peers[addr] = conn
		n := len(p.peers)
		p.mu.Unlock()
		log.Printf("[NET] Editor connected from %s (%d connected)", addr, n)
	case http.StateClosed, http.StateHijacked:
		p.mu.Lock()
		_, ok := p.peers[addr]
		delete(p.peers, addr)
		p.mu.Unlock()
		if ok {
			log.Printf("[NET] Editor %s disconnected", addr)
		}
	}
}

func (p *Peers) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.peers)
}

// Addrs returns the remote addresses of connected editors.
func (p *Peers) Addrs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	addrs := make([]string, 0, len(p.peers))
	for addr := range p.peers {
		addrs = append(addrs, addr)
	}
	return addrs
}
