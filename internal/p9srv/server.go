// Package p9srv serves a namespace over 9P2000. The Server holds every
// session and fid table and is driven by a single goroutine; connections
// only decode and encode messages.
package p9srv

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"strings"

	"9fans.net/go/plan9"

	"github.com/acmnu/wmii/internal/namespace"
)

const (
	// MaxMsize is the largest message size negotiated.
	MaxMsize = 8192
	// MaxIounit caps the payload of a single read or write.
	MaxIounit = 2048
	// MaxWalk is the largest number of names in one walk.
	MaxWalk = 16

	ioHeader = 24
)

// Server answers 9P requests against a Namespace.
type Server struct {
	ns       *namespace.Namespace
	logger   *slog.Logger
	sessions map[*Conn]*session
	readers  []*eventQueue
	parked   []*parkedRead
}

type session struct {
	msize uint32
	fids  map[uint32]*fid
}

type fid struct {
	qid namespace.Qid
	// parents of qid, root first, for walking "..".
	path   []namespace.Qid
	open   bool
	mode   uint8
	events *eventQueue
}

// NewServer returns a Server for ns.
func NewServer(ns *namespace.Namespace, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ns:       ns,
		logger:   logger,
		sessions: make(map[*Conn]*session),
	}
}

// Handle answers one request. A nil Fcall ends the connection's session.
// Replies to parked event reads are sent later by WriteEvent.
func (s *Server) Handle(req Request) {
	c, f := req.Conn, req.Fcall
	if f == nil {
		s.Hangup(c)
		return
	}
	defer func() {
		if err := recover(); err != nil {
			s.logger.Error("request panic recovered", "type", f.Type, "error", err, "stack", string(debug.Stack()))
			c.send(&plan9.Fcall{Type: plan9.Rerror, Tag: f.Tag, Ename: fmt.Sprint(err)})
		}
	}()

	reply, err := s.dispatch(c, f)
	if err != nil {
		s.logger.Debug("request failed", "remote", c.remote, "type", f.Type, "error", err)
		reply = &plan9.Fcall{Type: plan9.Rerror, Ename: err.Error()}
	}
	if reply == nil {
		return
	}
	reply.Tag = f.Tag
	c.send(reply)
}

// Hangup drops the session of c.
func (s *Server) Hangup(c *Conn) {
	if sess, ok := s.sessions[c]; ok {
		s.reset(c, sess)
		delete(s.sessions, c)
	}
	c.Close()
}

func (s *Server) reset(c *Conn, sess *session) {
	for id := range sess.fids {
		s.release(sess, id)
	}
	s.dropParked(func(p *parkedRead) bool { return p.conn == c })
}

func (s *Server) dispatch(c *Conn, f *plan9.Fcall) (*plan9.Fcall, error) {
	if f.Type == plan9.Tversion {
		return s.version(c, f)
	}
	sess, ok := s.sessions[c]
	if !ok {
		return nil, ErrNoVersion
	}
	switch f.Type {
	case plan9.Tauth:
		return nil, ErrNoFunction
	case plan9.Tattach:
		return s.attach(sess, f)
	case plan9.Tflush:
		s.dropParked(func(p *parkedRead) bool { return p.conn == c && p.tag == f.Oldtag })
		return &plan9.Fcall{Type: plan9.Rflush}, nil
	case plan9.Twalk:
		return s.walk(sess, f)
	case plan9.Topen:
		return s.open(sess, f)
	case plan9.Tcreate:
		return s.create(sess, f)
	case plan9.Tread:
		return s.read(c, sess, f)
	case plan9.Twrite:
		return s.write(sess, f)
	case plan9.Tclunk:
		if sess.fids[f.Fid] == nil {
			return nil, ErrNoFid
		}
		s.release(sess, f.Fid)
		return &plan9.Fcall{Type: plan9.Rclunk}, nil
	case plan9.Tremove:
		return s.remove(sess, f)
	case plan9.Tstat:
		return s.stat(sess, f)
	}
	return nil, ErrNoFunction
}

func (s *Server) version(c *Conn, f *plan9.Fcall) (*plan9.Fcall, error) {
	if sess, ok := s.sessions[c]; ok {
		s.reset(c, sess)
		delete(s.sessions, c)
	}
	if !strings.HasPrefix(f.Version, "9P2000") {
		return nil, ErrVersion
	}
	msize := min(f.Msize, MaxMsize)
	if msize <= ioHeader {
		return nil, fmt.Errorf("%w: msize %d", ErrVersion, f.Msize)
	}
	s.sessions[c] = &session{msize: msize, fids: make(map[uint32]*fid)}
	return &plan9.Fcall{Type: plan9.Rversion, Msize: msize, Version: "9P2000"}, nil
}

func (sess *session) iounit() uint32 {
	return min(MaxIounit, sess.msize-ioHeader)
}

func (s *Server) release(sess *session, id uint32) {
	f := sess.fids[id]
	if f == nil {
		return
	}
	s.closeEvents(f)
	delete(sess.fids, id)
}

func (s *Server) attach(sess *session, f *plan9.Fcall) (*plan9.Fcall, error) {
	if sess.fids[f.Fid] != nil {
		return nil, ErrFidInUse
	}
	root := s.ns.Root()
	sess.fids[f.Fid] = &fid{qid: root}
	return &plan9.Fcall{Type: plan9.Rattach, Qid: wireQid(root)}, nil
}

func (s *Server) walk(sess *session, f *plan9.Fcall) (*plan9.Fcall, error) {
	src := sess.fids[f.Fid]
	if src == nil {
		return nil, ErrNoFid
	}
	if src.open {
		return nil, ErrFidOpen
	}
	if f.Newfid != f.Fid && sess.fids[f.Newfid] != nil {
		return nil, ErrFidInUse
	}
	if len(f.Wname) > MaxWalk {
		return nil, ErrTooManyNames
	}

	cur := src.qid
	path := slices.Clone(src.path)
	wqid := make([]plan9.Qid, 0, len(f.Wname))
	var created []namespace.Qid
	var failed error
	for _, name := range f.Wname {
		next, err := s.step(cur, name, &path)
		if err != nil {
			failed = err
			break
		}
		if creates(cur, name) {
			created = append(created, next)
		}
		cur = next
		wqid = append(wqid, wireQid(cur))
	}
	if failed != nil {
		s.undoCreates(created)
		if len(wqid) == 0 {
			return nil, failed
		}
		return &plan9.Fcall{Type: plan9.Rwalk, Wqid: wqid}, nil
	}
	if f.Newfid != f.Fid {
		s.release(sess, f.Newfid)
	}
	sess.fids[f.Newfid] = &fid{qid: cur, path: path}
	return &plan9.Fcall{Type: plan9.Rwalk, Wqid: wqid}, nil
}

// creates reports whether walking name from q makes a new entity.
func creates(q namespace.Qid, name string) bool {
	return name == "new" && (q.Kind == namespace.KindTagDir || q.Kind == namespace.KindBar)
}

// undoCreates removes the entities made by a walk that did not complete.
func (s *Server) undoCreates(created []namespace.Qid) {
	for i := len(created) - 1; i >= 0; i-- {
		if err := s.ns.Remove(created[i]); err != nil {
			s.logger.Warn("undo walk create failed", "qid", created[i], "error", err)
		}
	}
}

// step walks one name from cur, updating the parent stack.
func (s *Server) step(cur namespace.Qid, name string, path *[]namespace.Qid) (namespace.Qid, error) {
	if _, err := s.ns.Describe(cur); err != nil {
		return namespace.Qid{}, err
	}
	if name == ".." {
		p := *path
		if len(p) == 0 {
			return cur, nil
		}
		*path = p[:len(p)-1]
		return p[len(p)-1], nil
	}
	next, err := s.ns.Resolve(cur, name, true)
	if err != nil {
		return namespace.Qid{}, err
	}
	*path = append(*path, cur)
	return next, nil
}

// access checks an open mode against the owner permission bits of q.
func access(q namespace.Qid, mode uint8) error {
	if mode&^(plan9.OTRUNC|3) != 0 {
		return fmt.Errorf("%w: %#x", ErrBadMode, mode)
	}
	perm := q.Perm()
	var read, write bool
	switch mode & 3 {
	case plan9.OREAD, plan9.OEXEC:
		read = true
	case plan9.OWRITE:
		write = true
	case plan9.ORDWR:
		read, write = true, true
	}
	if mode&plan9.OTRUNC != 0 {
		write = true
	}
	switch {
	case read && perm&0o400 == 0,
		write && perm&0o200 == 0,
		write && q.IsDir():
		return namespace.ErrPermission
	}
	return nil
}

func (s *Server) open(sess *session, f *plan9.Fcall) (*plan9.Fcall, error) {
	fd := sess.fids[f.Fid]
	if fd == nil {
		return nil, ErrNoFid
	}
	if fd.open {
		return nil, ErrFidOpen
	}
	if _, err := s.ns.Describe(fd.qid); err != nil {
		return nil, err
	}
	if err := access(fd.qid, f.Mode); err != nil {
		return nil, err
	}
	fd.open = true
	fd.mode = f.Mode
	if namespace.IsEvent(fd.qid) {
		s.openEvents(fd)
	}
	return &plan9.Fcall{Type: plan9.Ropen, Qid: wireQid(fd.qid), Iounit: sess.iounit()}, nil
}

func (s *Server) create(sess *session, f *plan9.Fcall) (*plan9.Fcall, error) {
	fd := sess.fids[f.Fid]
	if fd == nil {
		return nil, ErrNoFid
	}
	if fd.open {
		return nil, ErrFidOpen
	}
	q, err := s.ns.Create(fd.qid, f.Name)
	if err != nil {
		return nil, err
	}
	mode := f.Mode
	if q.IsDir() {
		mode = plan9.OREAD
	}
	if err := access(q, mode); err != nil {
		return nil, err
	}
	fd.path = append(fd.path, fd.qid)
	fd.qid = q
	fd.open = true
	fd.mode = mode
	return &plan9.Fcall{Type: plan9.Rcreate, Qid: wireQid(q), Iounit: sess.iounit()}, nil
}

func (s *Server) openFid(sess *session, id uint32) (*fid, error) {
	fd := sess.fids[id]
	if fd == nil {
		return nil, ErrNoFid
	}
	if !fd.open {
		return nil, ErrFidNotOpen
	}
	return fd, nil
}

func (s *Server) read(c *Conn, sess *session, f *plan9.Fcall) (*plan9.Fcall, error) {
	fd, err := s.openFid(sess, f.Fid)
	if err != nil {
		return nil, err
	}
	if fd.mode&3 == plan9.OWRITE {
		return nil, namespace.ErrPermission
	}
	count := min(f.Count, sess.iounit())

	if fd.qid.IsDir() {
		data, err := s.readDir(fd.qid, f.Offset, count)
		if err != nil {
			return nil, err
		}
		return &plan9.Fcall{Type: plan9.Rread, Data: data}, nil
	}
	if fd.events != nil {
		if fd.events.empty() {
			s.parked = append(s.parked, &parkedRead{conn: c, tag: f.Tag, fid: fd, count: count})
			return nil, nil
		}
		return &plan9.Fcall{Type: plan9.Rread, Data: fd.events.take(count)}, nil
	}

	data, err := s.ns.Read(fd.qid)
	if err != nil {
		return nil, err
	}
	if f.Offset >= uint64(len(data)) {
		return &plan9.Fcall{Type: plan9.Rread}, nil
	}
	data = data[f.Offset:]
	if uint32(len(data)) > count {
		data = data[:count]
	}
	return &plan9.Fcall{Type: plan9.Rread, Data: data}, nil
}

// readDir serializes the listing of dir from offset. Only whole stat
// records are returned.
func (s *Server) readDir(dir namespace.Qid, offset uint64, count uint32) ([]byte, error) {
	entries, err := s.ns.Enumerate(dir)
	if err != nil {
		return nil, err
	}
	var out []byte
	var pos uint64
	for _, e := range entries {
		b, err := statBytes(e)
		if err != nil {
			return nil, err
		}
		if pos < offset {
			pos += uint64(len(b))
			continue
		}
		if len(out)+len(b) > int(count) {
			if len(out) == 0 {
				return nil, ErrCountTooSmall
			}
			break
		}
		out = append(out, b...)
	}
	return out, nil
}

func (s *Server) write(sess *session, f *plan9.Fcall) (*plan9.Fcall, error) {
	fd, err := s.openFid(sess, f.Fid)
	if err != nil {
		return nil, err
	}
	if fd.mode&3 == plan9.OREAD || fd.mode&3 == plan9.OEXEC {
		return nil, namespace.ErrPermission
	}
	if err := s.ns.Write(fd.qid, f.Data); err != nil {
		return nil, err
	}
	return &plan9.Fcall{Type: plan9.Rwrite, Count: uint32(len(f.Data))}, nil
}

func (s *Server) remove(sess *session, f *plan9.Fcall) (*plan9.Fcall, error) {
	fd := sess.fids[f.Fid]
	if fd == nil {
		return nil, ErrNoFid
	}
	err := s.ns.Remove(fd.qid)
	s.release(sess, f.Fid)
	if err != nil {
		return nil, err
	}
	return &plan9.Fcall{Type: plan9.Rremove}, nil
}

func (s *Server) stat(sess *session, f *plan9.Fcall) (*plan9.Fcall, error) {
	fd := sess.fids[f.Fid]
	if fd == nil {
		return nil, ErrNoFid
	}
	e, err := s.ns.Describe(fd.qid)
	if err != nil {
		return nil, err
	}
	b, err := statBytes(e)
	if err != nil {
		return nil, err
	}
	return &plan9.Fcall{Type: plan9.Rstat, Stat: b}, nil
}

func wireQid(q namespace.Qid) plan9.Qid {
	wq := plan9.Qid{Path: q.Path()}
	if q.IsDir() {
		wq.Type = plan9.QTDIR
	}
	return wq
}

func statBytes(e namespace.Entry) ([]byte, error) {
	t := uint32(e.Time.Unix())
	d := plan9.Dir{
		Qid:    wireQid(e.Qid),
		Mode:   plan9.Perm(e.Mode),
		Atime:  t,
		Mtime:  t,
		Length: e.Length,
		Name:   e.Name,
		Uid:    e.Owner,
		Gid:    e.Owner,
		Muid:   e.Owner,
	}
	return d.Bytes()
}
