// Package repotest provides in-memory repositories for service tests.
package repotest

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// docStore keeps documents as bson.M so updates and filters behave like the Mongo ones.
type docStore struct {
	mu    sync.Mutex
	docs  map[string]bson.M
	order []string
	clock func() time.Time
}

func newDocStore() *docStore {
	return &docStore{docs: map[string]bson.M{}}
}

func normalize(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decode(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func (s *docStore) put(id string, v interface{}) error {
	doc, err := normalize(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; ok {
		return fmt.Errorf("duplicate key %s", id)
	}
	s.docs[id] = doc
	s.order = append(s.order, id)
	return nil
}

func (s *docStore) get(id string, out interface{}) (bool, error) {
	s.mu.Lock()
	doc, ok := s.docs[id]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, decode(doc, out)
}

func (s *docStore) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}

// update applies fields ($set semantics) when the document matches cond and stamps updatedAt.
func (s *docStore) update(id string, cond, set, inc bson.M) (bool, error) {
	return s.modify(id, cond, set, inc, true)
}

// modify is update with the updatedAt stamp optional, for writes the Mongo repo leaves untouched.
func (s *docStore) modify(id string, cond, set, inc bson.M, touch bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok || !Matches(doc, cond) {
		return false, nil
	}
	for k, v := range set {
		setPath(doc, k, v)
	}
	for k, v := range inc {
		setPath(doc, k, toFloat(lookup(doc, k))+toFloat(v))
	}
	if touch {
		doc["updatedAt"] = s.now()
	}
	normalized, err := normalize(doc)
	if err != nil {
		return false, err
	}
	s.docs[id] = normalized
	return true, nil
}

func (s *docStore) push(id, field string, value interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return false, nil
	}
	list, _ := doc[field].(bson.A)
	doc[field] = append(list, value)
	normalized, err := normalize(doc)
	if err != nil {
		return false, err
	}
	s.docs[id] = normalized
	return true, nil
}

func (s *docStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// find returns matching documents in insertion order.
func (s *docStore) find(filter bson.M) []bson.M {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []bson.M
	for _, id := range s.order {
		if doc := s.docs[id]; Matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func findAs[T any](s *docStore, filter bson.M) ([]T, error) {
	docs := s.find(filter)
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := decode(d, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func lookup(doc bson.M, path string) interface{} {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(bson.M)
		if !ok {
			return nil
		}
		cur, ok = m[part]
		if !ok {
			return nil
		}
	}
	return cur
}

func setPath(doc bson.M, path string, v interface{}) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(bson.M)
		if !ok {
			next = bson.M{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

// Matches evaluates the subset of the Mongo query language the repositories use.
func Matches(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		if key == "$or" {
			matched := false
			for _, alt := range toSlice(want) {
				if m, ok := alt.(bson.M); ok && Matches(doc, m) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
			continue
		}
		got := lookup(doc, key)
		if ops, ok := want.(bson.M); ok && isOperator(ops) {
			if !matchOps(got, ops) {
				return false
			}
			continue
		}
		if !equalOrContains(got, want) {
			return false
		}
	}
	return true
}

// equalOrContains mirrors Mongo matching a scalar against an array field.
func equalOrContains(got, want interface{}) bool {
	if arr, ok := got.(bson.A); ok {
		if _, wantArr := want.(bson.A); !wantArr {
			for _, v := range arr {
				if equal(v, want) {
					return true
				}
			}
			return false
		}
	}
	return equal(got, want)
}

func isOperator(m bson.M) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func matchOps(got interface{}, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$ne":
			if equal(got, arg) {
				return false
			}
		case "$in", "$nin":
			found := false
			for _, v := range toSlice(arg) {
				if equalOrContains(got, v) {
					found = true
					break
				}
			}
			if found != (op == "$in") {
				return false
			}
		case "$exists":
			if (got != nil) != arg.(bool) {
				return false
			}
		case "$lt", "$lte", "$gt", "$gte":
			if got == nil || !compare(got, arg, op) {
				return false
			}
		}
	}
	return true
}

func compare(a, b interface{}, op string) bool {
	var x, y float64
	if ta, ok := toTime(a); ok {
		tb, _ := toTime(b)
		x, y = float64(ta.UnixNano()), float64(tb.UnixNano())
	} else {
		x, y = toFloat(a), toFloat(b)
	}
	switch op {
	case "$lt":
		return x < y
	case "$lte":
		return x <= y
	case "$gt":
		return x > y
	}
	return x >= y
}

func toSlice(v interface{}) []interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []interface{}{v}
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	}
	return 0
}

func equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := toTime(a); ok {
		tb, ok := toTime(b)
		return ok && ta.Equal(tb)
	}
	switch a.(type) {
	case int, int32, int64, float32, float64:
		return toFloat(a) == toFloat(b)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.String && vb.Kind() == reflect.String {
		return va.String() == vb.String()
	}
	return reflect.DeepEqual(a, b)
}
