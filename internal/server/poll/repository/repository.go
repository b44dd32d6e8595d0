package repository

import (
	"github.com/Alwanly/attribute-poll/internal/server/poll/dto"
	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/poll"
)

// Commander is the command side of the poll engine.
type Commander interface {
	Send(cmd poll.Command)
	Pending() int
}

type IRepository interface {
	SendCommand(cmd poll.Command)
	PendingCommands() int
	GetAttribute(id attribute.ID) (*dto.AttributeResponse, error)
	CreateAttribute(parent attribute.ID, t attribute.Type) (attribute.ID, error)
	DeleteAttribute(id attribute.ID) error
	Root() attribute.ID
}

type Repository struct {
	Store  attribute.Store
	Poller Commander
}

var _ IRepository = (*Repository)(nil)

func NewRepository(store attribute.Store, poller Commander) *Repository {
	return &Repository{Store: store, Poller: poller}
}

func (r *Repository) SendCommand(cmd poll.Command) {
	r.Poller.Send(cmd)
}

func (r *Repository) PendingCommands() int {
	return r.Poller.Pending()
}

func (r *Repository) Root() attribute.ID {
	return r.Store.Root()
}

func (r *Repository) GetAttribute(id attribute.ID) (*dto.AttributeResponse, error) {
	t, err := r.Store.TypeOf(id)
	if err != nil {
		return nil, err
	}
	parent, err := r.Store.Parent(id)
	if err != nil {
		return nil, err
	}
	reported, err := r.Store.IsReportedSet(id)
	if err != nil {
		return nil, err
	}
	desired, err := r.Store.IsDesiredSet(id)
	if err != nil {
		return nil, err
	}
	children, err := r.Store.Children(id)
	if err != nil {
		return nil, err
	}

	res := &dto.AttributeResponse{
		ID:          uint64(id),
		Type:        t.String(),
		Parent:      uint64(parent),
		ReportedSet: reported,
		DesiredSet:  desired,
		Children:    make([]uint64, len(children)),
	}
	for i, c := range children {
		res.Children[i] = uint64(c)
	}
	return res, nil
}

func (r *Repository) CreateAttribute(parent attribute.ID, t attribute.Type) (attribute.ID, error) {
	return r.Store.Add(parent, t, nil, nil)
}

func (r *Repository) DeleteAttribute(id attribute.ID) error {
	return r.Store.Delete(id)
}
