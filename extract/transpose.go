package extract

import "github.com/fwojciec/spider"

// Transpose rewrites a flat aggregate record, whose every field is a List,
// into one record per index.
//
// When the lists have different lengths the rows cannot be aligned and
// Transpose returns unpacked=false; the caller keeps the aggregate. When
// every list is empty, or the record has no fields, it returns
// EEMPTYTRANSPOSE. Rows keep the aggregate's field order.
func Transpose(rec *spider.Record) (rows []*spider.Record, unpacked bool, err error) {
	fields := rec.Fields()

	lists := make([]spider.List, len(fields))
	lengths := make(map[int]struct{})
	for i, f := range fields {
		list, ok := f.Value.(spider.List)
		if !ok {
			return nil, false, spider.FieldErrorf(spider.EUNSUPPORTED, f.Name, "field '%s' is not a list and cannot be transposed", f.Name)
		}
		lists[i] = list
		lengths[len(list)] = struct{}{}
	}

	if len(lengths) > 1 {
		return nil, false, nil
	}

	n := 0
	for l := range lengths {
		n = l
	}
	if n == 0 {
		return nil, false, spider.Errorf(spider.EEMPTYTRANSPOSE, "nothing to unpack: every field matched zero items")
	}

	rows = make([]*spider.Record, n)
	for i := range rows {
		row := spider.NewRecord(len(fields))
		for j, f := range fields {
			row.Set(f.Name, spider.NewScalar(lists[j][i]))
		}
		rows[i] = row
	}
	return rows, true, nil
}
