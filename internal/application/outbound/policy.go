package outbound

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// Policy parametriza el flujo de salida por clase de documento: qué tipo de
// transacción escribe en el libro, cuál usa su reverso, contra qué clase de
// orden se valida y si el documento alimenta el estado de entrega de la orden.
type Policy struct {
	Kind            entity.DocumentKind
	OrderKind       entity.OrderKind
	TxnType         entity.TransactionType
	ReversalTxnType entity.TransactionType
	TracksDelivery  bool
}

// DeliveryChallanPolicy gobierna las remisiones de órdenes internas: mueven el
// estado de entrega de la orden.
var DeliveryChallanPolicy = Policy{
	Kind:            entity.KindDeliveryChallan,
	OrderKind:       entity.OrderInternal,
	TxnType:         entity.TxnDeliveryChallan,
	ReversalTxnType: entity.TxnChallanReversal,
	TracksDelivery:  true,
}

// B2BShipmentPolicy gobierna los despachos de órdenes B2B: idéntica mecánica
// de stock y seriales, sin tocar el estado de entrega.
var B2BShipmentPolicy = Policy{
	Kind:            entity.KindB2BShipment,
	OrderKind:       entity.OrderB2B,
	TxnType:         entity.TxnB2BShipment,
	ReversalTxnType: entity.TxnShipmentReversal,
	TracksDelivery:  false,
}

// PolicyFor resuelve la política por clase de documento.
func PolicyFor(kind entity.DocumentKind) (Policy, bool) {
	switch kind {
	case entity.KindDeliveryChallan:
		return DeliveryChallanPolicy, true
	case entity.KindB2BShipment:
		return B2BShipmentPolicy, true
	}
	return Policy{}, false
}
