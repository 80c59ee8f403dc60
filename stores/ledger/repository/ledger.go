package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/ledger"
	"github.com/x-xyz/sweeper/service/query"
)

type ledgerRepoImpl struct {
	q query.Mongo
}

func NewLedgerRepo(q query.Mongo) ledger.Repo {
	return &ledgerRepoImpl{q}
}

func (im *ledgerRepoImpl) makeQuery(opts ...ledger.FindAllOptionsFunc) (bson.M, *ledger.FindAllOptions, error) {
	options, err := ledger.GetFindAllOptions(opts...)
	if err != nil {
		return nil, nil, err
	}
	query := bson.M{}

	if options.ChainId != nil {
		query["chainId"] = *options.ChainId
	}

	if options.User != nil {
		query["user"] = *options.User
	}

	if options.Wallet != nil {
		query["wallet"] = *options.Wallet
	}

	if options.Collection != nil {
		query["collection"] = *options.Collection
	}

	if options.Status != nil {
		query["status"] = *options.Status
	}

	createdAtQuery := bson.M{}
	if options.CreatedAtGT != nil {
		createdAtQuery["$gt"] = *options.CreatedAtGT
	}

	if options.CreatedAtLT != nil {
		createdAtQuery["$lt"] = *options.CreatedAtLT
	}

	if len(createdAtQuery) > 0 {
		query["createdAt"] = createdAtQuery
	}

	return query, &options, nil
}

func (im *ledgerRepoImpl) FindAll(ctx ctx.Ctx, opts ...ledger.FindAllOptionsFunc) ([]*ledger.Record, error) {
	query, options, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery")
		return nil, err
	}

	offset := 0
	limit := 0
	sort := "-createdAt"
	if options.Offset != nil {
		offset = int(*options.Offset)
	}
	if options.Limit != nil {
		limit = int(*options.Limit)
	}
	if options.Sort != nil {
		sort = *options.Sort
	}

	res := []*ledger.Record{}
	err = im.q.Search(ctx, domain.TableLedgerRecords, offset, limit, sort, query, &res)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("failed to q.Search")
		return nil, err
	}

	return res, nil
}

func (im *ledgerRepoImpl) FindOne(ctx ctx.Ctx, id ledger.RecordId) (*ledger.Record, error) {
	res := &ledger.Record{}
	if err := im.q.FindOne(ctx, domain.TableLedgerRecords, id, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to q.FindOne")
		return nil, err
	}
	return res, nil
}

func (im *ledgerRepoImpl) Count(ctx ctx.Ctx, opts ...ledger.FindAllOptionsFunc) (int, error) {
	query, _, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery")
		return 0, err
	}

	count, err := im.q.Count(ctx, domain.TableLedgerRecords, query)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("failed to q.Count")
		return 0, err
	}
	return count, nil
}

func (im *ledgerRepoImpl) Insert(ctx ctx.Ctx, record *ledger.Record) error {
	if err := im.q.Insert(ctx, domain.TableLedgerRecords, record); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"txHash": record.TxHash,
		}).Error("failed to q.Insert")
		return err
	}
	return nil
}

func (im *ledgerRepoImpl) Update(ctx ctx.Ctx, id ledger.RecordId, patchable ledger.RecordPatchable) error {
	if err := im.q.Patch(ctx, domain.TableLedgerRecords, id, patchable); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to q.Patch")
		return err
	}
	return nil
}

func (im *ledgerRepoImpl) RemoveAll(ctx ctx.Ctx, opts ...ledger.FindAllOptionsFunc) error {
	query, _, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery")
		return err
	}

	if _, err := im.q.RemoveAll(ctx, domain.TableLedgerRecords, query); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("failed to q.RemoveAll")
		return err
	}
	return nil
}
