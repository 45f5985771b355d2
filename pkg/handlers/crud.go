package handlers

import (
	"errors"

	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/router"
)

// Patch is implemented by the model patch structs.
type Patch[T any] interface {
	Apply(*T)
}

// resource wires one collection to the standard list/get/create/update/delete
// routes.
type resource[T fixture.Entity[T], P Patch[T]] struct {
	coll   *fixture.Collection[T]
	fields fixture.Fields[T]
	schema string

	// newItem returns the defaults a created record starts from.
	newItem func() T
	// before runs after the body is bound and before the store is touched.
	// It may reject the request or fill derived patch fields.
	before func(req *router.Request, p *P, creating bool) error
	// present shapes a record for output.
	present func(T) T
}

func (res *resource[T, P]) register(g *router.Group, path string) {
	name := res.coll.Name()
	label := res.coll.Label()
	g.GET(path, res.list, router.Name(name+".list"), router.Summary(label+"列表"))
	g.POST(path, res.create, router.Name(name+".create"), router.Summary("创建"+label), router.Body(res.schema+".create"))
	g.GET(path+"/:id", res.get, router.Name(name+".get"), router.Summary(label+"详情"))
	g.PUT(path+"/:id", res.update, router.Name(name+".update"), router.Summary("更新"+label), router.Body(res.schema+".update"))
	g.DELETE(path+"/:id", res.remove, router.Name(name+".delete"), router.Summary("删除"+label))
}

func (res *resource[T, P]) show(item T) T {
	if res.present != nil {
		return res.present(item)
	}
	return item
}

func (res *resource[T, P]) showAll(items []T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = res.show(item)
	}
	return out
}

func (res *resource[T, P]) notFound() error {
	return &envelope.NotFoundError{Resource: res.coll.Label()}
}

// page lists records matching the query filters and extra, in that order.
func (res *resource[T, P]) page(req *router.Request, extra func(T) bool) *envelope.Reply {
	page, size := req.Page()
	p := res.coll.List(fixture.ListQuery[T]{
		Where:    fixture.And(extra, res.fields.Where(req.Query)),
		Page:     page,
		PageSize: size,
	})
	return envelope.Paged(res.showAll(p.Items), envelope.NewPagination(p.Current, p.PageSize, p.Total))
}

func (res *resource[T, P]) list(req *router.Request) *envelope.Reply {
	return res.page(req, nil)
}

func (res *resource[T, P]) get(req *router.Request) *envelope.Reply {
	recordID, err := req.ParamID("id")
	if err != nil {
		return envelope.FromError(err)
	}
	item, ok := res.coll.Get(recordID)
	if !ok {
		return envelope.FromError(res.notFound())
	}
	return envelope.OK(res.show(item))
}

func (res *resource[T, P]) create(req *router.Request) *envelope.Reply {
	var p P
	if err := req.Bind(&p); err != nil {
		return envelope.FromError(err)
	}
	if res.before != nil {
		if err := res.before(req, &p, true); err != nil {
			return envelope.FromError(err)
		}
	}

	var item T
	if res.newItem != nil {
		item = res.newItem()
	}
	p.Apply(&item)

	created, err := res.coll.Insert(item)
	if err != nil {
		return envelope.FromError(err)
	}
	return envelope.OKMessage("创建成功", res.show(created))
}

func (res *resource[T, P]) update(req *router.Request) *envelope.Reply {
	recordID, err := req.ParamID("id")
	if err != nil {
		return envelope.FromError(err)
	}
	var p P
	if err := req.Bind(&p); err != nil {
		return envelope.FromError(err)
	}
	if res.before != nil {
		if err := res.before(req, &p, false); err != nil {
			return envelope.FromError(err)
		}
	}

	updated, err := res.coll.Update(recordID, func(cur *T) error {
		p.Apply(cur)
		return nil
	})
	if err != nil {
		return envelope.FromError(res.mapErr(err))
	}
	return envelope.OKMessage("更新成功", res.show(updated))
}

func (res *resource[T, P]) remove(req *router.Request) *envelope.Reply {
	recordID, err := req.ParamID("id")
	if err != nil {
		return envelope.FromError(err)
	}
	if !res.coll.Remove(recordID) {
		return envelope.FromError(res.notFound())
	}
	return envelope.OKMessage("删除成功", nil)
}

// mutate applies fn to one record and replies with the result. It backs
// the simple state-flipping action routes.
func (res *resource[T, P]) mutate(req *router.Request, message string, fn func(*T)) *envelope.Reply {
	recordID, err := req.ParamID("id")
	if err != nil {
		return envelope.FromError(err)
	}
	updated, err := res.coll.Update(recordID, func(cur *T) error {
		fn(cur)
		return nil
	})
	if err != nil {
		return envelope.FromError(res.mapErr(err))
	}
	return envelope.OKMessage(message, res.show(updated))
}

// lookup fetches the record named by the :id parameter.
func (res *resource[T, P]) lookup(req *router.Request) (T, error) {
	var zero T
	recordID, err := req.ParamID("id")
	if err != nil {
		return zero, err
	}
	item, ok := res.coll.Get(recordID)
	if !ok {
		return zero, res.notFound()
	}
	return item, nil
}

func (res *resource[T, P]) mapErr(err error) error {
	if errors.Is(err, fixture.ErrNotFound) {
		return res.notFound()
	}
	return err
}
