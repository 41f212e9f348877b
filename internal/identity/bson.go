package identity

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// MarshalBSONValue stores numeric keys as int64 and opaque keys as
// ObjectID, so filters built from a Key match documents written with it.
func (k Key) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch k.form {
	case Numeric:
		return bson.MarshalValue(k.num)
	case Opaque:
		return bson.MarshalValue(k.oid)
	default:
		return bsontype.Null, nil, nil
	}
}

// UnmarshalBSONValue infers the form from the stored BSON type. Integral
// doubles are accepted for documents written by loosely typed clients.
func (k *Key) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	var (
		key Key
		err error
	)
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*k = Key{}
		return nil
	case bsontype.Int64:
		key, err = Normalize(rv.Int64(), Numeric)
	case bsontype.Int32:
		key, err = Normalize(rv.Int32(), Numeric)
	case bsontype.Double:
		key, err = Normalize(rv.Double(), Numeric)
	case bsontype.ObjectID:
		key, err = Normalize(rv.ObjectID(), Opaque)
	default:
		return fmt.Errorf("identity: cannot decode BSON %s into Key", t)
	}
	if err != nil {
		return fmt.Errorf("identity: decode stored key: %w", err)
	}
	*k = key
	return nil
}
