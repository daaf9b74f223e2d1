package mockapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/service"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// listQuery общие параметры списка из query string
type listQuery struct {
	page      int
	limit     int
	sortBy    string
	sortOrder api.SortOrder
	search    string
}

func parseListQuery(q url.Values) (listQuery, *errors.Error) {
	lq := listQuery{
		page:      defaultPage,
		limit:     defaultLimit,
		sortBy:    q.Get("sortBy"),
		sortOrder: api.SortOrder(q.Get("sortOrder")),
		search:    q.Get("search"),
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return lq, errors.New(errors.ErrValidation, "page must be a positive integer")
		}
		lq.page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return lq, errors.New(errors.ErrValidation, "limit must be a positive integer")
		}
		lq.limit = min(n, maxLimit)
	}
	if lq.sortOrder != "" && lq.sortOrder != api.SortAsc && lq.sortOrder != api.SortDesc {
		return lq, errors.New(errors.ErrValidation, "sortOrder must be asc or desc")
	}
	return lq, nil
}

// paginate вырезает страницу из отфильтрованного списка
func paginate[T any](items []T, lq listQuery) api.Page[T] {
	start := (lq.page - 1) * lq.limit
	if start > len(items) {
		start = len(items)
	}
	end := min(start+lq.limit, len(items))
	return api.Page[T]{
		Items: append([]T{}, items[start:end]...),
		Total: len(items),
		Page:  lq.page,
		Limit: lq.limit,
	}
}

func notFound(noun string) *errors.Error {
	return errors.New(errors.ErrNotFound, noun+" not found")
}

// softDeleteRoutes регистрирует DELETE и PATCH restore для коллекции
func softDeleteRoutes[T any](s *Server, r *mux.Router, c *collection[T], noun string) {
	r.HandleFunc("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		if !c.softDelete(id) {
			writeError(w, notFound(noun))
			return
		}
		s.logger.Info("запись удалена", logger.String("entity", noun), logger.String("id", id))
		writeData(w, http.StatusOK, nil)
	}).Methods(http.MethodDelete)

	r.HandleFunc("/{id}/restore", func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		entity, result := c.restore(id)
		switch result {
		case restoreNotFound:
			writeError(w, notFound(noun))
		case restoreNotDeleted:
			writeError(w, errors.New(errors.ErrConflict, noun+" is not deleted"))
		default:
			s.logger.Info("запись восстановлена", logger.String("entity", noun), logger.String("id", id))
			writeData(w, http.StatusOK, entity)
		}
	}).Methods(http.MethodPatch)

	r.HandleFunc("/{id}", func(w http.ResponseWriter, req *http.Request) {
		entity, ok := c.get(mux.Vars(req)["id"])
		if !ok {
			writeError(w, notFound(noun))
			return
		}
		writeData(w, http.StatusOK, entity)
	}).Methods(http.MethodGet)
}

// customerRoutes маршруты клиентов
func (s *Server) customerRoutes(r *mux.Router) {
	r.HandleFunc("", s.listCustomers).Methods(http.MethodGet)
	r.HandleFunc("", s.createCustomer).Methods(http.MethodPost)
	r.HandleFunc("/{id}", s.updateCustomer).Methods(http.MethodPut)
	r.HandleFunc("/{id}/status", s.updateCustomerStatus).Methods(http.MethodPatch)
	softDeleteRoutes(s, r, s.customers, "Customer")
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lq, perr := parseListQuery(q)
	if perr != nil {
		writeError(w, perr)
		return
	}

	items := service.FilterCustomers(s.customers.active(), service.CustomerFilter{
		Search: lq.search,
		Status: api.CustomerStatus(q.Get("status")),
		Area:   q.Get("area"),
		City:   q.Get("city"),
	})
	items = service.SortCustomers(items, lq.sortBy, lq.sortOrder)
	writeData(w, http.StatusOK, paginate(items, lq))
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var input api.CustomerInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := service.ValidateCustomer(s.validator, input); err != nil {
		writeError(w, validationFailure(err))
		return
	}

	customer := api.Customer{RegistrationDate: s.now().UTC()}
	applyCustomerInput(&customer, input)
	if customer.Status == "" {
		customer.Status = api.CustomerActive
	}
	created := s.customers.insert(customer)
	s.logger.Info("клиент создан", logger.String("id", created.ID), logger.String("shop_name", created.ShopName))
	writeData(w, http.StatusCreated, created)
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var input api.CustomerInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := service.ValidateCustomer(s.validator, input); err != nil {
		writeError(w, validationFailure(err))
		return
	}

	updated, ok := s.customers.update(mux.Vars(r)["id"], func(c *api.Customer) {
		status := c.Status
		applyCustomerInput(c, input)
		if c.Status == "" {
			c.Status = status
		}
	})
	if !ok {
		writeError(w, notFound("Customer"))
		return
	}
	writeData(w, http.StatusOK, updated)
}

func applyCustomerInput(c *api.Customer, input api.CustomerInput) {
	c.ShopName = input.ShopName
	c.OwnerName = input.OwnerName
	c.OwnerPhone = input.OwnerPhone
	c.OwnerEmail = input.OwnerEmail
	c.Address = input.Address
	c.Area = input.Area
	c.City = input.City
	c.State = input.State
	c.Pincode = input.Pincode
	c.Status = input.Status
	c.Notes = input.Notes
}

func (s *Server) updateCustomerStatus(w http.ResponseWriter, r *http.Request) {
	var input api.CustomerStatusUpdate
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.ValidateEnum(string(input.Status), api.CustomerStatuses, "status"); err != nil {
		writeError(w, validationFailure(err))
		return
	}

	updated, ok := s.customers.update(mux.Vars(r)["id"], func(c *api.Customer) { c.Status = input.Status })
	if !ok {
		writeError(w, notFound("Customer"))
		return
	}
	writeData(w, http.StatusOK, updated)
}

// orderRoutes маршруты заказов
func (s *Server) orderRoutes(r *mux.Router) {
	r.HandleFunc("", s.listOrders).Methods(http.MethodGet)
	r.HandleFunc("", s.createOrder).Methods(http.MethodPost)
	r.HandleFunc("/{id}", s.updateOrder).Methods(http.MethodPut)
	r.HandleFunc("/{id}/status", s.updateOrderStatus).Methods(http.MethodPatch)
	softDeleteRoutes(s, r, s.orders, "Order")
}

func parseDate(q url.Values, key string) (time.Time, *errors.Error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, errors.New(errors.ErrValidation, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", key))
	}
	return t, nil
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lq, perr := parseListQuery(q)
	if perr != nil {
		writeError(w, perr)
		return
	}
	from, perr := parseDate(q, "dateFrom")
	if perr != nil {
		writeError(w, perr)
		return
	}
	to, perr := parseDate(q, "dateTo")
	if perr != nil {
		writeError(w, perr)
		return
	}

	items := service.FilterOrders(s.orders.active(), service.OrderFilter{
		Search:   lq.search,
		Status:   api.OrderStatus(q.Get("status")),
		DateFrom: from,
		DateTo:   to,
	})
	items = service.SortOrders(items, lq.sortBy, lq.sortOrder)
	writeData(w, http.StatusOK, paginate(items, lq))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var input api.OrderInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := service.ValidateOrder(s.validator, input); err != nil {
		writeError(w, validationFailure(err))
		return
	}

	order := api.Order{Date: s.now().UTC()}
	applyOrderInput(&order, input)
	if order.Status == "" {
		order.Status = api.OrderPending
	}
	created := s.orders.insert(order)
	s.logger.Info("заказ создан", logger.String("id", created.ID), logger.String("customer", created.CustomerName))
	writeData(w, http.StatusCreated, created)
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	var input api.OrderInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := service.ValidateOrder(s.validator, input); err != nil {
		writeError(w, validationFailure(err))
		return
	}

	updated, ok := s.orders.update(mux.Vars(r)["id"], func(o *api.Order) {
		status := o.Status
		applyOrderInput(o, input)
		if o.Status == "" {
			o.Status = status
		}
	})
	if !ok {
		writeError(w, notFound("Order"))
		return
	}
	writeData(w, http.StatusOK, updated)
}

func applyOrderInput(o *api.Order, input api.OrderInput) {
	o.CustomerName = input.CustomerName
	o.CustomerAddress = input.CustomerAddress
	o.CustomerEmail = input.CustomerEmail
	o.CustomerPhone = input.CustomerPhone
	o.Status = input.Status
	o.ShippingMethod = input.ShippingMethod
	o.TrackingNumber = input.TrackingNumber
	o.Notes = input.Notes
	o.OrderItems = make([]api.OrderItem, len(input.OrderItems))
	for i, item := range input.OrderItems {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		o.OrderItems[i] = item
	}
	o.Items = len(o.OrderItems)
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var input api.OrderStatusUpdate
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validator.ValidateEnum(string(input.Status), api.OrderStatuses, "status"); err != nil {
		writeError(w, validationFailure(err))
		return
	}

	updated, ok := s.orders.update(mux.Vars(r)["id"], func(o *api.Order) {
		o.Status = input.Status
		if input.TrackingNumber != "" {
			o.TrackingNumber = input.TrackingNumber
		}
		if input.ShippingMethod != "" {
			o.ShippingMethod = input.ShippingMethod
		}
	})
	if !ok {
		writeError(w, notFound("Order"))
		return
	}
	writeData(w, http.StatusOK, updated)
}

// productRoutes маршруты товаров
func (s *Server) productRoutes(r *mux.Router) {
	r.HandleFunc("", s.listProducts).Methods(http.MethodGet)
	r.HandleFunc("", s.createProduct).Methods(http.MethodPost)
	r.HandleFunc("/{id}", s.updateProduct).Methods(http.MethodPut)
	softDeleteRoutes(s, r, s.products, "Product")
}

func parseFloat(q url.Values, key string) (*float64, *errors.Error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errors.New(errors.ErrValidation, key+" must be a number")
	}
	return &f, nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lq, perr := parseListQuery(q)
	if perr != nil {
		writeError(w, perr)
		return
	}

	filter := service.ProductFilter{
		Search:      lq.search,
		CompanyIDs:  q["companyId"],
		CategoryIDs: q["categoryId"],
	}
	if filter.MinPrice, perr = parseFloat(q, "minPrice"); perr != nil {
		writeError(w, perr)
		return
	}
	if filter.MaxPrice, perr = parseFloat(q, "maxPrice"); perr != nil {
		writeError(w, perr)
		return
	}
	if v := q.Get("outOfStock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, errors.New(errors.ErrValidation, "outOfStock must be a boolean"))
			return
		}
		filter.OutOfStock = &b
	}

	items := service.FilterProducts(s.products.active(), filter)
	items = service.SortProducts(items, lq.sortBy, lq.sortOrder)
	writeData(w, http.StatusOK, paginate(items, lq))
}

// checkReferences проверяет, что компания и категория товара существуют
func (s *Server) checkReferences(input api.ProductInput) *errors.Error {
	if _, ok := s.companies.get(input.CompanyID); !ok {
		return errors.New(errors.ErrValidation, "Company not found").
			WithStatus(http.StatusUnprocessableEntity)
	}
	if _, ok := s.categories.get(input.CategoryID); !ok {
		return errors.New(errors.ErrValidation, "Category not found").
			WithStatus(http.StatusUnprocessableEntity)
	}
	return nil
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var input api.ProductInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := service.ValidateProduct(s.validator, input); err != nil {
		writeError(w, validationFailure(err))
		return
	}
	if err := s.checkReferences(input); err != nil {
		writeError(w, err)
		return
	}

	var product api.Product
	applyProductInput(&product, input)
	created := s.products.insert(product)
	s.logger.Info("товар создан", logger.String("id", created.ID), logger.String("name", created.Name))
	writeData(w, http.StatusCreated, created)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var input api.ProductInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := service.ValidateProduct(s.validator, input); err != nil {
		writeError(w, validationFailure(err))
		return
	}
	if err := s.checkReferences(input); err != nil {
		writeError(w, err)
		return
	}

	updated, ok := s.products.update(mux.Vars(r)["id"], func(p *api.Product) { applyProductInput(p, input) })
	if !ok {
		writeError(w, notFound("Product"))
		return
	}
	writeData(w, http.StatusOK, updated)
}

func applyProductInput(p *api.Product, input api.ProductInput) {
	p.Name = input.Name
	p.CompanyID = input.CompanyID
	p.CategoryID = input.CategoryID
	p.IsOutOfStock = input.IsOutOfStock
	p.AvailableInPieces = input.AvailableInPieces
	p.AvailableInPack = input.AvailableInPack
	p.PackSize = input.PackSize
	p.Variants = make([]api.ProductVariant, len(input.Variants))
	for i, v := range input.Variants {
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		p.Variants[i] = v
	}
}

// namedRoutes маршруты справочников с единственным полем name
func namedRoutes[T any](s *Server, r *mux.Router, c *collection[T], noun string,
	setName func(*T, string), newEntity func(name string) T) {

	readName := func(w http.ResponseWriter, req *http.Request) (string, bool) {
		var input api.NamedInput
		if err := decodeBody(req, &input); err != nil {
			writeError(w, err)
			return "", false
		}
		if err := s.validator.ValidateRequiredFields(map[string]string{"name": input.Name}, []string{"name"}); err != nil {
			writeError(w, validationFailure(err))
			return "", false
		}
		return strings.TrimSpace(input.Name), true
	}

	r.HandleFunc("", func(w http.ResponseWriter, req *http.Request) {
		writeData(w, http.StatusOK, c.active())
	}).Methods(http.MethodGet)

	r.HandleFunc("", func(w http.ResponseWriter, req *http.Request) {
		name, ok := readName(w, req)
		if !ok {
			return
		}
		writeData(w, http.StatusCreated, c.insert(newEntity(name)))
	}).Methods(http.MethodPost)

	r.HandleFunc("/{id}", func(w http.ResponseWriter, req *http.Request) {
		name, ok := readName(w, req)
		if !ok {
			return
		}
		updated, found := c.update(mux.Vars(req)["id"], func(e *T) { setName(e, name) })
		if !found {
			writeError(w, notFound(noun))
			return
		}
		writeData(w, http.StatusOK, updated)
	}).Methods(http.MethodPut)

	softDeleteRoutes(s, r, c, noun)
}
