package migrate

import (
	"context"

	"github.com/pushkindt/pushkind-orders/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, pg_trgm
	CreateChecks           bool // CHECK-constraints для целостности
	CreateIndexes          bool // индексы и UNIQUE
	CreateFKsViaSQL        bool // FK через SQL (поверх GORM-constraint)
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateHubDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных хаба")

	if opt.CreateExtensions {
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error; err != nil {
			log.Error("Не удалось включить расширение pg_trgm", zap.Error(err))
			return err
		}
	}

	log.Info("Создание таблиц каталога и заказов")
	if err := db.WithContext(ctx).AutoMigrate(
		&models.PriceLevel{},
		&models.Category{},
		&models.Product{},
		&models.ProductPriceLevel{},
		&models.Tag{},
		&models.ProductTag{},
		&models.Customer{},
		&models.DiscountAssignment{},
		&models.Order{},
		&models.OrderProduct{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := db.WithContext(ctx).Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;
`).Error; err != nil {
			log.Error("Не удалось создать функцию set_updated_at", zap.Error(err))
			return err
		}
		for _, table := range []string{"price_levels", "categories", "products", "product_price_levels", "customers", "discount_assignments", "orders", "order_products"} {
			if err := db.WithContext(ctx).Exec(`
DROP TRIGGER IF EXISTS trg_` + table + `_updated ON ` + table + `;
CREATE TRIGGER trg_` + table + `_updated
BEFORE UPDATE ON ` + table + `
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
				log.Error("Не удалось создать триггер updated_at", zap.String("table", table), zap.Error(err))
				return err
			}
		}
	}

	if opt.CreateChecks {
		checks := []string{
			`ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (upper(status) IN ('DRAFT','PENDING','PROCESSING','COMPLETED','CANCELLED'));`,
			`ALTER TABLE discount_assignments
  DROP CONSTRAINT IF EXISTS chk_discount_assignments_status_allowed;
ALTER TABLE discount_assignments
  ADD CONSTRAINT chk_discount_assignments_status_allowed
  CHECK (status IN ('REQUESTED','APPROVED','REJECTED'));`,
			`ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_currency_len;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_currency_len
  CHECK (char_length(currency) = 3);`,
			`ALTER TABLE order_products
  DROP CONSTRAINT IF EXISTS chk_order_products_currency_len;
ALTER TABLE order_products
  ADD CONSTRAINT chk_order_products_currency_len
  CHECK (char_length(currency) = 3);`,
			`ALTER TABLE order_products
  DROP CONSTRAINT IF EXISTS chk_order_products_quantity_gt_zero;
ALTER TABLE order_products
  ADD CONSTRAINT chk_order_products_quantity_gt_zero
  CHECK (quantity > 0);`,
			`ALTER TABLE order_products
  DROP CONSTRAINT IF EXISTS chk_order_products_prices_non_negative;
ALTER TABLE order_products
  ADD CONSTRAINT chk_order_products_prices_non_negative
  CHECK (price_cents >= 0 AND line_total_cents >= 0);`,
			`ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_total_non_negative;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_total_non_negative
  CHECK (total_cents >= 0);`,
			`ALTER TABLE product_price_levels
  DROP CONSTRAINT IF EXISTS chk_product_price_levels_price_non_negative;
ALTER TABLE product_price_levels
  ADD CONSTRAINT chk_product_price_levels_price_non_negative
  CHECK (price_cents >= 0);`,
		}
		for _, stmt := range checks {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				log.Error("Не удалось создать CHECK-ограничение", zap.Error(err))
				return err
			}
		}
	}

	if opt.CreateIndexes {
		indexes := []string{
			// Уникальные имена/email/sku per hub — без учёта регистра
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_price_levels_hub_name
ON price_levels (hub_id, lower(name));`,
			// Не более одного уровня по умолчанию на хаб
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_price_levels_hub_default
ON price_levels (hub_id) WHERE is_default;`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_products_hub_sku
ON products (hub_id, lower(sku)) WHERE sku IS NOT NULL;`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_tags_hub_name
ON tags (hub_id, lower(name));`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_customers_hub_email
ON customers (hub_id, lower(email));`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_categories_hub_parent_name
ON categories (hub_id, coalesce(parent_id, '00000000-0000-0000-0000-000000000000'::uuid), lower(name));`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_hub_reference
ON orders (hub_id, reference) WHERE reference IS NOT NULL;`,
			// Для выборок: заказы хаба по дате
			`CREATE INDEX IF NOT EXISTS ix_orders_hub_created
ON orders (hub_id, created_at DESC, id DESC);`,
			`CREATE INDEX IF NOT EXISTS ix_orders_hub_status_created
ON orders (hub_id, status, created_at DESC);`,
			`CREATE INDEX IF NOT EXISTS ix_products_hub_created
ON products (hub_id, created_at DESC, id DESC);`,
			`CREATE INDEX IF NOT EXISTS ix_order_products_order
ON order_products (order_id, created_at ASC, id ASC);`,
		}
		for _, stmt := range indexes {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				log.Error("Не удалось создать индекс", zap.Error(err))
				return err
			}
		}
	}

	if opt.CreateFKsViaSQL {
		fks := []string{
			`ALTER TABLE products
  DROP CONSTRAINT IF EXISTS fk_products_category,
  ADD CONSTRAINT fk_products_category
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL;`,
			`ALTER TABLE categories
  DROP CONSTRAINT IF EXISTS fk_categories_parent,
  ADD CONSTRAINT fk_categories_parent
    FOREIGN KEY (parent_id) REFERENCES categories(id) ON DELETE SET NULL;`,
			`ALTER TABLE product_price_levels
  DROP CONSTRAINT IF EXISTS fk_product_price_levels_product,
  ADD CONSTRAINT fk_product_price_levels_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;`,
			`ALTER TABLE product_price_levels
  DROP CONSTRAINT IF EXISTS fk_product_price_levels_level,
  ADD CONSTRAINT fk_product_price_levels_level
    FOREIGN KEY (price_level_id) REFERENCES price_levels(id) ON DELETE CASCADE;`,
			`ALTER TABLE product_tags
  DROP CONSTRAINT IF EXISTS fk_product_tags_product,
  ADD CONSTRAINT fk_product_tags_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;`,
			`ALTER TABLE product_tags
  DROP CONSTRAINT IF EXISTS fk_product_tags_tag,
  ADD CONSTRAINT fk_product_tags_tag
    FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE;`,
			`ALTER TABLE customers
  DROP CONSTRAINT IF EXISTS fk_customers_price_level,
  ADD CONSTRAINT fk_customers_price_level
    FOREIGN KEY (price_level_id) REFERENCES price_levels(id) ON DELETE SET NULL;`,
			`ALTER TABLE discount_assignments
  DROP CONSTRAINT IF EXISTS fk_discount_assignments_customer,
  ADD CONSTRAINT fk_discount_assignments_customer
    FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE;`,
			`ALTER TABLE discount_assignments
  DROP CONSTRAINT IF EXISTS fk_discount_assignments_level,
  ADD CONSTRAINT fk_discount_assignments_level
    FOREIGN KEY (price_level_id) REFERENCES price_levels(id) ON DELETE CASCADE;`,
			`ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_customer,
  ADD CONSTRAINT fk_orders_customer
    FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE SET NULL;`,
			`ALTER TABLE order_products
  DROP CONSTRAINT IF EXISTS fk_order_products_order,
  ADD CONSTRAINT fk_order_products_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`,
			`ALTER TABLE order_products
  DROP CONSTRAINT IF EXISTS fk_order_products_product,
  ADD CONSTRAINT fk_order_products_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE SET NULL;`,
		}
		for _, stmt := range fks {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				log.Error("Не удалось создать внешний ключ", zap.Error(err))
				return err
			}
		}
	}

	log.Info("Миграция базы данных хаба успешно завершена")
	return nil
}
