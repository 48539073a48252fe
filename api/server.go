package api

import (
	"context"
	"errors"
	"net/http"

	jbModels "github.com/GorillaPool/go-junglebus/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	orders "github.com/shruggr/utxo-orders"
	"github.com/shruggr/utxo-orders/broadcast"
	"github.com/shruggr/utxo-orders/lib"
	"github.com/shruggr/utxo-orders/models"
)

type BoxSource interface {
	GetBox(ctx context.Context, outpoint models.Outpoint) (*models.Box, error)
}

// BoxSourceFunc adapts a lookup function, such as lib.Loader.LoadBox.
type BoxSourceFunc func(ctx context.Context, outpoint models.Outpoint) (*models.Box, error)

func (f BoxSourceFunc) GetBox(ctx context.Context, outpoint models.Outpoint) (*models.Box, error) {
	return f(ctx, outpoint)
}

// TxSource reports what the indexing service knows about a transaction.
type TxSource interface {
	LoadTxData(ctx context.Context, txid string) (*jbModels.Transaction, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev *broadcast.Event) error
}

type Server struct {
	Boxes     BoxSource
	Fallback  BoxSource
	Finder    orders.Finder
	Protocols *orders.Protocols
	Publisher Publisher
	Txs       TxSource
	Log       *zap.Logger
}

func (s *Server) Routes(r gin.IRouter) {
	r.GET("/api/boxes/:outpoint", s.getBox)
	r.GET("/api/orders/:outpoint/spec", s.getMatchSpec)
	r.GET("/api/orders/:outpoint/counterparty", s.getCounterparty)
	r.GET("/api/tx/:txid", s.getTx)
	r.POST("/api/sell", s.createSell)
	r.POST("/api/swap", s.createSwap)
	r.POST("/api/orders/:outpoint/reclaim", s.reclaim)
	r.POST("/api/orders/:outpoint/execute", s.execute)
}

func (s *Server) fail(c *gin.Context, err error) {
	he := toHttpError(err)
	if he.StatusCode >= 500 {
		s.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(he.StatusCode, gin.H{"error": he.Err.Error()})
}

func (s *Server) loadBox(ctx context.Context, id string) (*models.Box, error) {
	outpoint, err := models.NewOutpointFromString(id)
	if err != nil {
		return nil, &HttpError{StatusCode: http.StatusBadRequest, Err: err}
	}
	box, err := s.Boxes.GetBox(ctx, outpoint)
	if errors.Is(err, orders.ErrNotFound) && s.Fallback != nil {
		box, err = s.Fallback.GetBox(ctx, outpoint)
	}
	return box, err
}

func (s *Server) loadOrder(c *gin.Context) (*models.Box, orders.Protocol, error) {
	box, err := s.loadBox(c.Request.Context(), c.Param("outpoint"))
	if err != nil {
		return nil, nil, err
	}
	p, ok := s.Protocols.For(box)
	if !ok {
		return nil, nil, &orders.OrderError{Kind: orders.ErrSpecMismatch, Msg: "box " + box.ID.String() + " is not an order"}
	}
	return box, p, nil
}

func (s *Server) publish(c *gin.Context, action string, utx *models.UnsignedTransaction) {
	ev, err := broadcast.NewEvent(action, utx)
	if err != nil {
		s.fail(c, err)
		return
	}
	if s.Publisher != nil {
		if err := s.Publisher.Publish(c.Request.Context(), ev); err != nil {
			s.fail(c, &HttpError{StatusCode: http.StatusBadGateway, Err: err})
			return
		}
	}
	c.JSON(http.StatusOK, ev)
}

// getBox godoc
// @Summary Indexed box
// @Param outpoint path string true "txid and vout, hex"
// @Success 200 {object} models.Box
// @Router /api/boxes/{outpoint} [get]
func (s *Server) getBox(c *gin.Context) {
	box, err := s.loadBox(c.Request.Context(), c.Param("outpoint"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, box)
}

// getMatchSpec godoc
// @Summary Spec a box must satisfy to fulfill the order
// @Param outpoint path string true "order outpoint"
// @Router /api/orders/{outpoint}/spec [get]
func (s *Server) getMatchSpec(c *gin.Context) {
	order, p, err := s.loadOrder(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	spec, err := p.MatchSpec(order)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

// getCounterparty godoc
// @Summary First indexed box that fulfills the order
// @Param outpoint path string true "order outpoint"
// @Success 200 {object} models.Box
// @Router /api/orders/{outpoint}/counterparty [get]
func (s *Server) getCounterparty(c *gin.Context) {
	order, p, err := s.loadOrder(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	box, err := orders.FindCounterparty(c.Request.Context(), s.Finder, p, order)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, box)
}

// getTx godoc
// @Summary Indexing service view of a published transaction
// @Param txid path string true "txid"
// @Router /api/tx/{txid} [get]
func (s *Server) getTx(c *gin.Context) {
	if s.Txs == nil {
		s.fail(c, &HttpError{StatusCode: http.StatusNotImplemented, Err: errors.New("no transaction source")})
		return
	}
	txData, err := s.Txs.LoadTxData(c.Request.Context(), c.Param("txid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txData)
}

type txParams struct {
	Height uint32 `json:"height"`
	Fee    uint64 `json:"fee" binding:"required"`
}

type createSellRequest struct {
	txParams
	Owner     string `json:"owner" binding:"required"`
	AskAmount uint64 `json:"askAmount"`
	Funding   string `json:"funding" binding:"required"`
}

// createSell godoc
// @Summary Build a transaction opening a sell order
// @Accept json
// @Success 200 {object} broadcast.Event
// @Router /api/sell [post]
func (s *Server) createSell(c *gin.Context) {
	var req createSellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, &HttpError{StatusCode: http.StatusBadRequest, Err: err})
		return
	}
	if _, err := lib.LockingScript(req.Owner); err != nil {
		s.fail(c, err)
		return
	}
	funding, err := s.loadBox(c.Request.Context(), req.Funding)
	if err != nil {
		s.fail(c, err)
		return
	}
	utx, err := s.Protocols.Sell.Create(orders.SellParams{
		Owner:     req.Owner,
		AskAmount: req.AskAmount,
	}, funding, req.Height, req.Fee)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.publish(c, "create-sell", utx)
}

type createSwapRequest struct {
	txParams
	Owner         string `json:"owner" binding:"required"`
	DesiredToken  string `json:"desiredToken" binding:"required"`
	DesiredAmount uint64 `json:"desiredAmount"`
	Funding       string `json:"funding" binding:"required"`
}

// createSwap godoc
// @Summary Build a transaction opening a swap order
// @Accept json
// @Success 200 {object} broadcast.Event
// @Router /api/swap [post]
func (s *Server) createSwap(c *gin.Context) {
	var req createSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, &HttpError{StatusCode: http.StatusBadRequest, Err: err})
		return
	}
	if _, err := lib.LockingScript(req.Owner); err != nil {
		s.fail(c, err)
		return
	}
	funding, err := s.loadBox(c.Request.Context(), req.Funding)
	if err != nil {
		s.fail(c, err)
		return
	}
	utx, err := s.Protocols.Swap.Create(orders.SwapParams{
		Owner:         req.Owner,
		DesiredToken:  req.DesiredToken,
		DesiredAmount: req.DesiredAmount,
	}, funding, req.Height, req.Fee)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.publish(c, "create-swap", utx)
}

// reclaim godoc
// @Summary Build a transaction returning an order to its owner
// @Param outpoint path string true "order outpoint"
// @Success 200 {object} broadcast.Event
// @Router /api/orders/{outpoint}/reclaim [post]
func (s *Server) reclaim(c *gin.Context) {
	var req txParams
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, &HttpError{StatusCode: http.StatusBadRequest, Err: err})
		return
	}
	order, p, err := s.loadOrder(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	utx, err := p.Reclaim(order, req.Height, req.Fee)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.publish(c, "reclaim-"+p.Kind().String(), utx)
}

type executeRequest struct {
	txParams
	Counterparty string `json:"counterparty"`
}

// execute godoc
// @Summary Build a transaction fulfilling an order
// @Description Without a counterparty the index is searched for one.
// @Param outpoint path string true "order outpoint"
// @Success 200 {object} broadcast.Event
// @Router /api/orders/{outpoint}/execute [post]
func (s *Server) execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, &HttpError{StatusCode: http.StatusBadRequest, Err: err})
		return
	}
	ctx := c.Request.Context()
	order, p, err := s.loadOrder(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var counterparty *models.Box
	if req.Counterparty != "" {
		counterparty, err = s.loadBox(ctx, req.Counterparty)
	} else {
		counterparty, err = orders.FindCounterparty(ctx, s.Finder, p, order)
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	utx, err := p.Execute(order, counterparty, req.Height, req.Fee)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.publish(c, "execute-"+p.Kind().String(), utx)
}
