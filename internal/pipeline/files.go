package pipeline

import (
	"github.com/krauseamir/wikigir/internal/articletype"
	"github.com/krauseamir/wikigir/internal/geo"
	"github.com/krauseamir/wikigir/pkg/binio"
)

// Codecs for the flat per-article artifact files. Each follows the shared
// layout convention: a record count, then length-prefixed fields per
// record.

func saveCoordinates(path string, m map[string]geo.Coordinates) error {
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(len(m))
		for title, c := range m {
			w.WriteString(title)
			c.Write(w)
		}
		return w.Err()
	})
}

func loadCoordinates(path string) (map[string]geo.Coordinates, error) {
	m := make(map[string]geo.Coordinates)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		n := r.ReadInt()
		for i := 0; i < n; i++ {
			title := r.ReadString()
			c := geo.ReadCoordinates(r)
			if err := r.Err(); err != nil {
				return err
			}
			m[title] = c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func saveStringMap(path string, m map[string]string) error {
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(len(m))
		for key, value := range m {
			w.WriteString(key)
			w.WriteString(value)
		}
		return w.Err()
	})
}

func loadStringMap(path string) (map[string]string, error) {
	m := make(map[string]string)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		n := r.ReadInt()
		for i := 0; i < n; i++ {
			key := r.ReadString()
			value := r.ReadString()
			if err := r.Err(); err != nil {
				return err
			}
			m[key] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func saveCategories(path string, m map[string][]int32) error {
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(len(m))
		for title, ids := range m {
			w.WriteString(title)
			w.WriteInt(len(ids))
			for _, id := range ids {
				w.WriteInt32(id)
			}
		}
		return w.Err()
	})
}

func loadCategories(path string) (map[string][]int32, error) {
	m := make(map[string][]int32)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		n := r.ReadInt()
		for i := 0; i < n; i++ {
			title := r.ReadString()
			ids := make([]int32, r.ReadInt())
			for j := range ids {
				ids[j] = r.ReadInt32()
			}
			if err := r.Err(); err != nil {
				return err
			}
			m[title] = ids
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func saveArticleTypes(path string, m map[string]articletype.Type) error {
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(len(m))
		for title, t := range m {
			w.WriteString(title)
			w.WriteString(t.String())
		}
		return w.Err()
	})
}

func loadArticleTypes(path string) (map[string]articletype.Type, error) {
	m := make(map[string]articletype.Type)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		n := r.ReadInt()
		for i := 0; i < n; i++ {
			title := r.ReadString()
			name := r.ReadString()
			if err := r.Err(); err != nil {
				return err
			}
			m[title] = articletype.Parse(name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func saveStringLists(path string, m map[string][]string) error {
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(len(m))
		for title, values := range m {
			w.WriteString(title)
			w.WriteInt(len(values))
			for _, v := range values {
				w.WriteString(v)
			}
		}
		return w.Err()
	})
}

func loadStringLists(path string) (map[string][]string, error) {
	m := make(map[string][]string)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		n := r.ReadInt()
		for i := 0; i < n; i++ {
			title := r.ReadString()
			k := r.ReadInt()
			values := make([]string, 0, k)
			for j := 0; j < k; j++ {
				values = append(values, r.ReadString())
			}
			if err := r.Err(); err != nil {
				return err
			}
			m[title] = values
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
