package lib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/GorillaPool/go-junglebus"
	jbModels "github.com/GorillaPool/go-junglebus/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/libsv/go-bt/v2"
	"github.com/shruggr/utxo-orders/models"
)

var ErrTxNotFound = errors.New("transaction not found")

// Loader fetches transactions from junglebus and keeps recently used ones.
type Loader struct {
	baseURL string
	http    *http.Client
	jb      *junglebus.JungleBusClient
	txCache *lru.Cache[string, *bt.Tx]
}

func NewLoader(jbURL string, cacheSize int) (*Loader, error) {
	jb, err := junglebus.New(
		junglebus.WithHTTP(jbURL),
	)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, *bt.Tx](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Loader{
		baseURL: strings.TrimSuffix(jbURL, "/"),
		http:    http.DefaultClient,
		jb:      jb,
		txCache: cache,
	}, nil
}

func (l *Loader) JungleBus() *junglebus.JungleBusClient {
	return l.jb
}

func (l *Loader) LoadTx(ctx context.Context, txid string) (tx *bt.Tx, err error) {
	if tx, ok := l.txCache.Get(txid); ok {
		return tx, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/transaction/get/%s/bin", l.baseURL, txid), nil)
	if err != nil {
		return
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		err = fmt.Errorf("%w: %s", ErrTxNotFound, txid)
		return
	}
	if resp.StatusCode >= 400 {
		err = fmt.Errorf("junglebus %s: status %d", txid, resp.StatusCode)
		return
	}
	rawtx, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	if tx, err = bt.NewTxFromBytes(rawtx); err != nil {
		return
	}

	l.txCache.Add(txid, tx)
	return
}

// LoadTxData returns junglebus metadata for txid, including its block.
func (l *Loader) LoadTxData(ctx context.Context, txid string) (*jbModels.Transaction, error) {
	return l.jb.GetTransaction(ctx, txid)
}

// LoadBox decodes the output referenced by outpoint.
func (l *Loader) LoadBox(ctx context.Context, outpoint models.Outpoint) (*models.Box, error) {
	txid := outpoint.Txid()
	tx, err := l.LoadTx(ctx, fmt.Sprintf("%x", txid))
	if err != nil {
		return nil, err
	}
	vout := outpoint.Vout()
	if int(vout) >= len(tx.Outputs) {
		return nil, fmt.Errorf("vout %d out of range", vout)
	}
	return BoxFromOutput(txid, vout, tx.Outputs[vout])
}
