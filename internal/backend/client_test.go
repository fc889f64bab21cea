package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tallerpos/internal/credential"
	"tallerpos/internal/infra"
	"tallerpos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute})
	c, err := New(srv.URL+"/api/", 2*time.Second, cb)
	require.NoError(t, err)
	return c, srv
}

func testCred(t *testing.T) credential.Credential {
	t.Helper()
	cred, err := credential.New("tok-123")
	require.NoError(t, err)
	return cred
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// ── Cajas ─────────────────────────────────────────────────────────────────────

func TestCajaActual_DecodesStringAmountsAndSendsCredential(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cajas/actual", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(w, 200, `{"ok":true,"caja":{"id_caja":"12","fecha_apertura":"2024-05-01T08:00:00Z",
			"monto_inicial":"500.00","fecha_cierre":null,"monto_final":null,
			"total_ventas":"10","total_ventas_reales":"1250.75"}}`)
	})

	s, err := c.CajaActual(context.Background(), testCred(t))
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(12), s.ID)
	assert.True(t, decimal.RequireFromString("500").Equal(s.MontoInicial))
	assert.True(t, decimal.RequireFromString("1250.75").Equal(s.TotalVentas))
	assert.True(t, s.Abierta())
}

func TestCajaActual_ClosedIsNotAnError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404", 404, `{"ok":false,"msg":"No hay caja abierta"}`},
		{"null caja", 200, `{"ok":true,"caja":null}`},
		{"closed caja", 200, `{"ok":true,"caja":{"id_caja":3,"fecha_cierre":"2024-05-01 18:00:00"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			s, err := c.CajaActual(context.Background(), testCred(t))
			require.NoError(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestCerrarCaja_SendsIDAndAmountAsNumbers(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `7`, string(body["id_caja"]))
		assert.JSONEq(t, `820.50`, string(body["monto_final"]))
		writeJSON(w, 200, `{"ok":true,"caja":{"id_caja":7,"fecha_cierre":"2024-05-01","monto_final":"820.5"}}`)
	})

	s, err := c.CerrarCaja(context.Background(), testCred(t), 7, decimal.RequireFromString("820.5"))
	require.NoError(t, err)
	assert.False(t, s.Abierta())
	require.NotNil(t, s.MontoFinal)
	assert.True(t, decimal.RequireFromString("820.5").Equal(*s.MontoFinal))
}

func TestHistorialCajas_SendsDateRange(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-04-01", r.URL.Query().Get("fecha_inicio"))
		assert.Equal(t, "2024-04-30", r.URL.Query().Get("fecha_fin"))
		writeJSON(w, 200, `{"ok":true,"historial":[{"id_caja":1,"monto_inicial":100,"total_ventas":null},{"id_caja":2,"monto_inicial":"200"}]}`)
	})

	desde := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	hist, err := c.HistorialCajas(context.Background(), testCred(t), desde, hasta)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.True(t, decimal.Zero.Equal(hist[0].TotalVentas))
	assert.True(t, decimal.RequireFromString("200").Equal(hist[1].MontoInicial))
}

// ── Catalogo / Ventas ─────────────────────────────────────────────────────────

func TestBuscarItem(t *testing.T) {
	t.Run("single producto", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/ventas/buscar", r.URL.Path)
			assert.Equal(t, "7501", r.URL.Query().Get("termino"))
			assert.Equal(t, "accesorio", r.URL.Query().Get("tipo_item"))
			writeJSON(w, 200, `{"ok":true,"producto":{"id":"4","tipo_item":"accesorio","nombre":"Casco","precio_venta":"150.00","stock":"3"}}`)
		})
		it, err := c.BuscarItem(context.Background(), testCred(t), "7501", model.KindAccesorio)
		require.NoError(t, err)
		assert.Equal(t, model.ItemKey{Tipo: model.KindAccesorio, ID: 4}, it.Key())
		assert.Equal(t, 3, it.Stock)
		assert.True(t, decimal.RequireFromString("150").Equal(it.PrecioVenta))
	})

	t.Run("first of list", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, `{"ok":true,"productos":[{"id":9,"tipo_item":"servicio","nombre":"Ajuste","precio_venta":50},{"id":10}]}`)
		})
		it, err := c.BuscarItem(context.Background(), testCred(t), "ajuste", "")
		require.NoError(t, err)
		assert.Equal(t, model.KindServicio, it.Tipo)
		assert.Equal(t, int64(9), it.ID)
	})

	t.Run("miss", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, `{"ok":true,"productos":[]}`)
		})
		_, err := c.BuscarItem(context.Background(), testCred(t), "zzz", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCrearVenta_WireShapeAndIdempotencyKey(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(&body))
		assert.Equal(t, json.Number("3"), body["id_caja"])
		assert.Equal(t, json.Number("230.00"), body["total_venta"])
		assert.Equal(t, json.Number("250.00"), body["monto_recibido"])
		assert.NotContains(t, body, "id_cliente")
		items := body["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, "bicicleta", items[0].(map[string]any)["tipo_item"])

		writeJSON(w, 201, `{"ok":true,"venta":{"id_venta":"88","total_venta":"230.00","monto_recibido":"250","cambio":"20",
			"estado_venta":1,"pdf_url":"/ventas/88/pdf","detalles":[{"id_detalle":1,"tipo_item":"bicicleta","id_item":5,"cantidad":"1","precio_unitario":"230"}]}}`)
	})

	v, err := c.CrearVenta(context.Background(), testCred(t), "key-1", model.NuevaVenta{
		CajaID:        3,
		Total:         decimal.RequireFromString("230"),
		MontoRecibido: decimal.RequireFromString("250"),
		Items: []model.ItemVenta{{
			Tipo: model.KindBicicleta, IDItem: 5, Cantidad: 1,
			PrecioUnitario: decimal.RequireFromString("230"), Subtotal: decimal.RequireFromString("230"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(88), v.ID)
	assert.True(t, v.Activa)
	assert.Equal(t, "/ventas/88/pdf", v.ComprobanteRef)
	require.Len(t, v.Detalles, 1)
	assert.True(t, decimal.RequireFromString("230").Equal(v.Detalles[0].Subtotal), "subtotal derived when absent")
}

func TestVentasPorCaja_ParsesVoidedFlag(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ventas/caja/3", r.URL.Path)
		writeJSON(w, 200, `{"ok":true,"ventas":[{"id_venta":1,"estado_venta":false,"detalles":[]},{"id_venta":2,"estado_venta":"1","detalles":[]},{"id_venta":3}]}`)
	})
	ventas, err := c.VentasPorCaja(context.Background(), testCred(t), 3)
	require.NoError(t, err)
	require.Len(t, ventas, 3)
	assert.False(t, ventas[0].Activa)
	assert.True(t, ventas[1].Activa)
	assert.True(t, ventas[2].Activa)
}

func TestCrearReembolso_WireShape(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(&body))
		assert.Equal(t, json.Number("40"), body["id_venta"])
		assert.Equal(t, json.Number("200.00"), body["monto_reembolso"])
		assert.Equal(t, "defecto", body["motivo"])
		item := body["items"].([]any)[0].(map[string]any)
		assert.Equal(t, json.Number("1"), item["id_detalle_venta"])
		assert.Equal(t, json.Number("2"), item["cantidad_reembolsada"])
		assert.Equal(t, json.Number("200.00"), item["subtotal_reembolso"])
		writeJSON(w, 200, `{"ok":true,"reembolso":{"id_reembolso":"5","monto_reembolso":"200"}}`)
	})

	r, err := c.CrearReembolso(context.Background(), testCred(t), model.NuevoReembolso{
		VentaID: 40,
		Monto:   decimal.RequireFromString("200"),
		Motivo:  "defecto",
		Items:   []model.ItemReembolso{{DetalleID: 1, Cantidad: 2, Subtotal: decimal.RequireFromString("200")}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), r.ID)
}

// ── Clientes ──────────────────────────────────────────────────────────────────

func TestClientePorNIT(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/clientes/nit/123-4" {
			writeJSON(w, 200, `{"ok":true,"cliente":{"id_cliente":"9","nit":"123-4","nombre":"Ana"}}`)
			return
		}
		writeJSON(w, 404, `{"ok":false,"msg":"Cliente no encontrado"}`)
	})

	cl, err := c.ClientePorNIT(context.Background(), testCred(t), "123-4")
	require.NoError(t, err)
	assert.Equal(t, model.Cliente{ID: 9, NIT: "123-4", Nombre: "Ana"}, cl)

	_, err = c.ClientePorNIT(context.Background(), testCred(t), "000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Cliente no encontrado", Message(err))
}

func TestClientes_ResourceCRUD(t *testing.T) {
	type seen struct{ method, path, body string }
	var got []seen
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = append(got, seen{r.Method, r.URL.Path, string(b)})
		switch r.Method + " " + r.URL.Path {
		case "GET /api/clientes":
			writeJSON(w, 200, `{"ok":true,"clientes":[{"id_cliente":1,"nit":"CF","nombre":"Consumidor Final"},
				{"id_cliente":"2","nit":"123-4","nombre":"Ana","telefono":"5555"}]}`)
		case "GET /api/clientes/2":
			writeJSON(w, 200, `{"ok":true,"cliente":{"id_cliente":2,"nit":"123-4","nombre":"Ana"}}`)
		case "PUT /api/clientes/2":
			writeJSON(w, 200, `{"ok":true,"cliente":{"id_cliente":2,"nit":"123-4","nombre":"Ana Maria"}}`)
		case "PUT /api/clientes/3":
			writeJSON(w, 200, `{"ok":true,"msg":"Cliente actualizado"}`)
		case "DELETE /api/clientes/2":
			writeJSON(w, 200, `{"ok":true,"msg":"Cliente eliminado"}`)
		default:
			writeJSON(w, 404, `{"ok":false,"msg":"Cliente no encontrado"}`)
		}
	})
	ctx := context.Background()

	list, err := c.ListarClientes(ctx, testCred(t))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.Cliente{ID: 2, NIT: "123-4", Nombre: "Ana", Telefono: "5555"}, list[1])

	cl, err := c.ObtenerCliente(ctx, testCred(t), 2)
	require.NoError(t, err)
	assert.Equal(t, "Ana", cl.Nombre)

	cl, err = c.ActualizarCliente(ctx, testCred(t), 2, model.Cliente{NIT: "123-4", Nombre: "Ana Maria"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", cl.Nombre)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(got[len(got)-1].body), &body))
	assert.Equal(t, "Ana Maria", body["nombre"])
	assert.NotContains(t, body, "email")

	// No row echoed: the submitted values come back under the id.
	cl, err = c.ActualizarCliente(ctx, testCred(t), 3, model.Cliente{NIT: "9", Nombre: "Luis"})
	require.NoError(t, err)
	assert.Equal(t, model.Cliente{ID: 3, NIT: "9", Nombre: "Luis"}, cl)

	require.NoError(t, c.EliminarCliente(ctx, testCred(t), 2))
	assert.Equal(t, seen{http.MethodDelete, "/api/clientes/2", ""}, got[len(got)-1])

	_, err = c.ObtenerCliente(ctx, testCred(t), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.ActualizarCliente(ctx, testCred(t), 7, model.Cliente{NIT: "1", Nombre: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.EliminarCliente(ctx, testCred(t), 7), ErrNotFound)
}

// ── Errors & breaker ──────────────────────────────────────────────────────────

func TestDo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", 401, `{"ok":false,"msg":"token vencido"}`, ErrUnauthorized},
		{"forbidden", 403, `{}`, ErrForbidden},
		{"not found", 404, ``, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.ObtenerVenta(context.Background(), testCred(t), 1)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, infra.CBClosed, c.Breaker())
		})
	}
}

func TestDo_OkFalseIsRejection(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, `{"ok":false,"msg":"Ya existe una caja abierta"}`)
	})
	_, err := c.AbrirCaja(context.Background(), testCred(t), decimal.NewFromInt(100))
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "Ya existe una caja abierta", he.Msg)
}

func TestCrearVenta_UnusableSuccessBodyIsInvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no venta", `{"ok":true}`},
		{"not json", `<html>ok</html>`},
		{"unknown kind", `{"ok":true,"venta":{"id_venta":3,"detalles":[{"id_detalle":1,"tipo_item":"patineta","cantidad":1}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, 201, tt.body)
			})
			_, err := c.CrearVenta(context.Background(), testCred(t), "k-1", model.NuevaVenta{CajaID: 1})
			assert.ErrorIs(t, err, ErrInvalidResponse)
			assert.NotErrorIs(t, err, ErrUnreachable)
			assert.Equal(t, infra.CBClosed, c.Breaker())
		})
	}
}

func TestDo_ServerErrorsTripBreaker(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, 500, `{"ok":false}`)
	})
	for i := 0; i < 2; i++ {
		_, err := c.ObtenerVenta(context.Background(), testCred(t), 1)
		require.Error(t, err)
	}
	assert.Equal(t, infra.CBOpen, c.Breaker())

	_, err := c.ObtenerVenta(context.Background(), testCred(t), 1)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_MissingCredentialNeverCallsBackend(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("backend must not be called")
	})
	_, err := c.CajaActual(context.Background(), credential.Credential{})
	assert.ErrorIs(t, err, credential.ErrMissing)
}

// ── Receipts ──────────────────────────────────────────────────────────────────

func TestResolveRef(t *testing.T) {
	c, srv := newTestClient(t, func(http.ResponseWriter, *http.Request) {})

	got, err := c.ResolveRef("/ventas/88/pdf")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/ventas/88/pdf", got)

	got, err = c.ResolveRef(srv.URL + "/files/88.pdf")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/files/88.pdf", got)

	_, err = c.ResolveRef("https://evil.example/steal")
	assert.Error(t, err)

	_, err = c.ResolveRef("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveRef_RefusesSchemeDowngrade(t *testing.T) {
	c, err := New("https://tienda.example/api", time.Second, nil)
	require.NoError(t, err)

	got, err := c.ResolveRef("HTTPS://tienda.example/files/88.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://tienda.example/files/88.pdf", got)

	_, err = c.ResolveRef("http://tienda.example/files/88.pdf")
	assert.Error(t, err)
}

func TestComprobante_Streams(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.4 fake")
	})

	doc, err := c.Comprobante(context.Background(), testCred(t), "/ventas/1/pdf")
	require.NoError(t, err)
	defer doc.Body.Close()
	body, _ := io.ReadAll(doc.Body)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "%PDF-1.4 fake", string(body))
}
