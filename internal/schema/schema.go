// Package schema maps Tally XML fragments onto Go structs driven by
// `tally:"..."` field tags. A tag names the wire tag, how to locate it
// (attribute, direct child, descendant, or list of repeated children)
// and optionally a value converter, a required flag for non-empty
// values and a hard flag for tags that must be present.
//
//	type Ledger struct {
//		Name    string          `tally:"name,elem,required,hard"`
//		Balance decimal.Decimal `tally:"closingbalance,desc"`
//		Entries []LedgerEntry   `tally:"ledgerentries,list"`
//	}
//
// Schemas are derived once per type by reflection and memoized.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"sharathv/tally-connect/internal/convert"
	"sharathv/tally-connect/internal/dom"
	"sharathv/tally-connect/internal/tallyerror"
)

// Kind says how a field's wire tag is located within the fragment.
type Kind int

const (
	// KindAttr reads an attribute of the fragment's own element.
	KindAttr Kind = iota
	// KindElem reads a single direct child element.
	KindElem
	// KindDesc reads a single descendant element at any depth.
	KindDesc
	// KindList reads the repeated "<tag>.LIST" direct children into a
	// slice, preserving document order.
	KindList
)

// tagKey is the struct tag key schemas are declared under.
const tagKey = "tally"

// listSuffix is appended to a list field's wire tag when locating its
// repeated children.
const listSuffix = ".list"

// Field is one mapped struct field.
type Field struct {
	Name      string
	Tag       string
	Kind      Kind
	Hard      bool
	Conv      convert.Converter
	Multiline bool

	index  []int
	ptr    bool
	nested bool         // single nested struct, populated recursively
	elem   reflect.Type // list element type, struct or pointer to struct
}

// Schema is the derived mapping for one struct type.
type Schema struct {
	Type   reflect.Type
	Fields []Field
}

// Binder is implemented by entities that want a reference to the
// fragment's parent value, e.g. voucher entries keeping a handle on
// their voucher.
type Binder interface {
	Bind(parent any)
}

var schemas sync.Map // reflect.Type -> *Schema

// For derives (or returns the memoized) schema for a struct type.
func For(t reflect.Type) (*Schema, error) {
	if cached, ok := schemas.Load(t); ok {
		return cached.(*Schema), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}
	s := &Schema{Type: t}
	if err := s.collect(t, nil); err != nil {
		return nil, err
	}
	actual, _ := schemas.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

// collect walks the struct fields, flattening anonymous embeds so a
// shared header struct contributes its tags to every embedder.
func (s *Schema) collect(t reflect.Type, prefix []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int{}, prefix...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get(tagKey) == "" {
			if err := s.collect(sf.Type, index); err != nil {
				return err
			}
			continue
		}

		raw := sf.Tag.Get(tagKey)
		if raw == "" || raw == "-" || !sf.IsExported() {
			continue
		}
		f, err := parseField(sf, raw)
		if err != nil {
			return fmt.Errorf("schema: %s.%s: %w", t.Name(), sf.Name, err)
		}
		f.index = index
		s.Fields = append(s.Fields, f)
	}
	return nil
}

func parseField(sf reflect.StructField, raw string) (Field, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return Field{}, fmt.Errorf("tag %q needs at least a name and a kind", raw)
	}
	f := Field{Name: sf.Name, Tag: strings.ToLower(parts[0])}

	switch parts[1] {
	case "attr":
		f.Kind = KindAttr
	case "elem":
		f.Kind = KindElem
	case "desc":
		f.Kind = KindDesc
	case "list":
		f.Kind = KindList
	default:
		return Field{}, fmt.Errorf("unknown kind %q", parts[1])
	}

	var required bool
	var convName string
	for _, opt := range parts[2:] {
		switch opt {
		case "required":
			required = true
		case "hard":
			f.Hard = true
		case "":
		default:
			convName = opt
		}
	}

	ft := sf.Type
	if f.Kind == KindList {
		if ft.Kind() != reflect.Slice {
			return Field{}, fmt.Errorf("list field must be a slice, got %s", ft)
		}
		f.elem = ft.Elem()
		et := f.elem
		if et.Kind() == reflect.Ptr {
			et = et.Elem()
		}
		if et.Kind() != reflect.Struct {
			return Field{}, fmt.Errorf("list element must be a struct, got %s", f.elem)
		}
		return f, nil
	}

	if ft.Kind() == reflect.Ptr {
		f.ptr = true
		ft = ft.Elem()
	}

	if ft.Kind() == reflect.Struct && ft != reflect.TypeOf(time.Time{}) && ft != reflect.TypeOf(decimal.Decimal{}) {
		if f.Kind == KindAttr {
			return Field{}, fmt.Errorf("attribute field cannot be a struct")
		}
		f.nested = true
		return f, nil
	}

	conv, err := converterFor(ft, convName, required)
	if err != nil {
		return Field{}, err
	}
	f.Conv = conv
	f.Multiline = convName == "multiline"
	return f, nil
}

// converterFor infers a converter from the Go type, letting an explicit
// tag option override the default (notably "datetime" for time.Time and
// "multiline" for string).
func converterFor(t reflect.Type, name string, required bool) (convert.Converter, error) {
	switch name {
	case "string":
		return convert.String{Required: required}, nil
	case "multiline":
		return convert.Multiline{Required: required}, nil
	case "integer":
		return convert.Integer{Required: required}, nil
	case "decimal":
		return convert.Decimal{Required: required}, nil
	case "boolean":
		return convert.Boolean{Required: required}, nil
	case "date":
		return convert.Date{Required: required}, nil
	case "datetime":
		return convert.DateTime{Required: required}, nil
	case "":
	default:
		return nil, fmt.Errorf("unknown converter %q", name)
	}

	switch t.Kind() {
	case reflect.String:
		return convert.String{Required: required}, nil
	case reflect.Bool:
		return convert.Boolean{Required: required}, nil
	case reflect.Int:
		return convert.Integer{Required: required}, nil
	}
	switch t {
	case reflect.TypeOf(decimal.Decimal{}):
		return convert.Decimal{Required: required}, nil
	case reflect.TypeOf(time.Time{}):
		return convert.Date{Required: required}, nil
	}
	return nil, fmt.Errorf("no converter for type %s", t)
}

// Populate fills target (a non-nil pointer to struct) from the XML
// fragment sel. Missing soft tags and soft conversion failures leave
// the field at its zero value; missing hard tags, required-but-empty
// values on hard fields and any ambiguous match fail the whole call.
// parent is handed to populated values implementing Binder.
func Populate(sel *goquery.Selection, target any, parent any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("schema: target must be a non-nil pointer, got %T", target)
	}
	v = v.Elem()
	s, err := For(v.Type())
	if err != nil {
		return err
	}

	for _, f := range s.Fields {
		if err := populateField(sel, v, f, s.Type.Name(), target); err != nil {
			return err
		}
	}

	if b, ok := target.(Binder); ok && parent != nil {
		b.Bind(parent)
	}
	return nil
}

func populateField(sel *goquery.Selection, v reflect.Value, f Field, entity string, owner any) error {
	fv := v.FieldByIndex(f.index)

	var err error
	switch f.Kind {
	case KindList:
		err = populateList(sel, fv, f, owner)
	case KindAttr:
		err = populateAttr(sel, fv, f, entity)
	default:
		err = populateScalar(sel, fv, f, entity, owner)
	}
	if err == nil {
		return nil
	}

	// Ambiguity means the schema does not fit the data, which no
	// soft flag should paper over.
	var ambiguous *tallyerror.TagAmbiguousError
	if errors.As(err, &ambiguous) {
		return err
	}
	if !f.Hard && errors.Is(err, tallyerror.ErrConversion) {
		return nil
	}
	return err
}

func populateScalar(sel *goquery.Selection, fv reflect.Value, f Field, entity string, owner any) error {
	var candidates *goquery.Selection
	if f.Kind == KindElem {
		candidates = dom.ChildrenNamed(sel, f.Tag)
	} else {
		candidates = dom.DescendantsNamed(sel, f.Tag)
	}

	switch n := candidates.Length(); {
	case n == 0:
		if f.Hard {
			return &tallyerror.TagNotFoundError{Tag: f.Tag, Entity: entity}
		}
		return nil
	case n > 1:
		return &tallyerror.TagAmbiguousError{Tag: f.Tag, Count: n}
	}

	if f.nested {
		return populateNested(candidates, fv, owner)
	}

	text := dom.Text(candidates)
	if f.Multiline {
		text = dom.MultilineText(candidates)
	}
	val, err := f.Conv.FromWire(text)
	if err != nil {
		return err
	}
	return assign(fv, f, val)
}

func populateAttr(sel *goquery.Selection, fv reflect.Value, f Field, entity string) error {
	text, ok := sel.Attr(f.Tag)
	if !ok {
		if f.Hard {
			return &tallyerror.TagNotFoundError{Tag: f.Tag, Entity: entity}
		}
		return nil
	}
	val, err := f.Conv.FromWire(text)
	if err != nil {
		return err
	}
	return assign(fv, f, val)
}

// populateList maps the repeated "<tag>.LIST" children in document
// order. An absent list is an empty slice, never an error. On a hard
// field any element failure fails the call; on a soft field failed
// elements are skipped, except ambiguity which always propagates.
func populateList(sel *goquery.Selection, fv reflect.Value, f Field, owner any) error {
	items := dom.ChildrenNamed(sel, f.Tag+listSuffix)
	if items.Length() == 0 {
		return nil
	}

	slice := reflect.MakeSlice(fv.Type(), 0, items.Length())
	var itemErr error
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		et := f.elem
		isPtr := et.Kind() == reflect.Ptr
		if isPtr {
			et = et.Elem()
		}
		elem := reflect.New(et)
		if err := Populate(item, elem.Interface(), owner); err != nil {
			var ambiguous *tallyerror.TagAmbiguousError
			if !f.Hard && errors.Is(err, tallyerror.ErrConversion) && !errors.As(err, &ambiguous) {
				return true
			}
			itemErr = err
			return false
		}
		if isPtr {
			slice = reflect.Append(slice, elem)
		} else {
			slice = reflect.Append(slice, elem.Elem())
		}
		return true
	})
	if itemErr != nil {
		return itemErr
	}
	fv.Set(slice)
	return nil
}

func populateNested(sel *goquery.Selection, fv reflect.Value, owner any) error {
	if fv.Kind() == reflect.Ptr {
		elem := reflect.New(fv.Type().Elem())
		if err := Populate(sel, elem.Interface(), owner); err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	}
	return Populate(sel, fv.Addr().Interface(), owner)
}

// assign stores a converter result into the field. A nil result leaves
// the field at its zero value, which for pointer fields keeps the
// absent/present distinction visible.
func assign(fv reflect.Value, f Field, val any) error {
	if val == nil {
		return nil
	}
	rv := reflect.ValueOf(val)
	if f.ptr {
		p := reflect.New(fv.Type().Elem())
		if !rv.Type().AssignableTo(p.Elem().Type()) {
			return &tallyerror.ConverterNotSupportedError{Tag: f.Tag, Type: fv.Type().String()}
		}
		p.Elem().Set(rv)
		fv.Set(p)
		return nil
	}
	if !rv.Type().AssignableTo(fv.Type()) {
		return &tallyerror.ConverterNotSupportedError{Tag: f.Tag, Type: fv.Type().String()}
	}
	fv.Set(rv)
	return nil
}
