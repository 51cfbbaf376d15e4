package datasets

import (
	"time"

	"github.com/JonMunkholm/sheetmap/internal/core"
)

// OrderLine is one item of a customer order. Lines of the same order share
// OrderNo, Customer and OrderDate and are exported as one merged group.
type OrderLine struct {
	OrderNo     string    `json:"order_no" validate:"required"`
	Customer    string    `json:"customer"`
	OrderDate   time.Time `json:"order_date"`
	Region      string    `json:"region"`
	Item        string    `json:"item" validate:"required"`
	Qty         int       `json:"qty" validate:"gte=0"`
	Price       float64   `json:"price" validate:"gte=0"`
	TrackingURL string    `json:"tracking_url,omitempty"`
}

// OrderLineSchema is the accessor table of OrderLine.
var OrderLineSchema = core.MustSchema("order_lines",
	core.Text("OrderNo", func(o *OrderLine) *string { return &o.OrderNo }),
	core.Text("Customer", func(o *OrderLine) *string { return &o.Customer }),
	core.Time("OrderDate", func(o *OrderLine) *time.Time { return &o.OrderDate }),
	core.Text("Region", func(o *OrderLine) *string { return &o.Region }),
	core.Text("Item", func(o *OrderLine) *string { return &o.Item }),
	core.Int("Qty", func(o *OrderLine) *int { return &o.Qty }),
	core.Float("Price", func(o *OrderLine) *float64 { return &o.Price }),
	core.Text("TrackingURL", func(o *OrderLine) *string { return &o.TrackingURL }),
)

func init() {
	core.Register(core.Define(core.Definition[OrderLine]{
		Info: core.DatasetInfo{
			Key:   "order_lines",
			Group: "Sales",
			Label: "Order Lines",
			Mapping: core.Map(
				"OrderNo", "订单号",
				"Customer", "客户",
				"OrderDate", "下单日期",
				"Region", "地区",
				"Item", "商品",
				"Qty", "数量",
				"Price", "单价",
				"TrackingURL", "物流链接",
			),
			Merge:      &core.MergeSpec{Unique: "OrderNo", Width: 3},
			LinkFields: []string{"TrackingURL"},
		},
		Schema: OrderLineSchema,
		Converters: map[string]core.Converter{
			"Region": func(s string) (any, error) { return NormalizeRegion(s), nil },
		},
	}))
}
